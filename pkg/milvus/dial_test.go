package milvus

import (
	"testing"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/stretchr/testify/require"
	"github.com/yami-cli/yami/pkg/config"
)

func TestClientConfig(t *testing.T) {
	tests := []struct {
		name string
		conn config.Connection
		want client.Config
	}{
		{
			name: "bare address",
			conn: config.Connection{URI: "localhost:19530"},
			want: client.Config{Address: "localhost:19530"},
		},
		{
			name: "http scheme stripped",
			conn: config.Connection{URI: "http://localhost:19530"},
			want: client.Config{Address: "localhost:19530"},
		},
		{
			name: "https turns on tls auth",
			conn: config.Connection{URI: "https://in01.zillizcloud.com:443"},
			want: client.Config{Address: "in01.zillizcloud.com:443", EnableTLSAuth: true},
		},
		{
			name: "trailing slash trimmed",
			conn: config.Connection{URI: "http://localhost:19530/"},
			want: client.Config{Address: "localhost:19530"},
		},
		{
			name: "token with colon becomes credentials",
			conn: config.Connection{URI: "localhost:19530", Token: "root:Milvus"},
			want: client.Config{Address: "localhost:19530", Username: "root", Password: "Milvus"},
		},
		{
			name: "password may contain colons",
			conn: config.Connection{URI: "localhost:19530", Token: "root:pa:ss"},
			want: client.Config{Address: "localhost:19530", Username: "root", Password: "pa:ss"},
		},
		{
			name: "opaque token becomes api key",
			conn: config.Connection{URI: "https://in01.zillizcloud.com", Token: "db_abc123"},
			want: client.Config{Address: "in01.zillizcloud.com", EnableTLSAuth: true, APIKey: "db_abc123"},
		},
		{
			name: "database carried through",
			conn: config.Connection{URI: "localhost:19530", Database: "prod"},
			want: client.Config{Address: "localhost:19530", DBName: "prod"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, clientConfig(tt.conn))
		})
	}
}
