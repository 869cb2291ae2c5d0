package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yami-cli/yami/pkg/cmd/testutil"
)

func decodeMessage(t *testing.T, res cliResult) string {
	t.Helper()

	var msg struct {
		Message string `json:"message"`
	}
	res.envelope(t).DataInto(t, &msg)
	return msg.Message
}

func TestAliasCommands(t *testing.T) {
	h := &cliHarness{}

	res := h.run(t, "--uri", "http://localhost:19530", "alias", "create", "docs_v2", "docs")
	require.Equal(t, 0, res.code)
	require.Equal(t, 1, h.fake.CallCount("CreateAlias"))
	require.Equal(t, "Alias 'docs' created for collection 'docs_v2'", decodeMessage(t, res))

	res = h.run(t, "--uri", "http://localhost:19530", "alias", "alter", "docs_v3", "docs")
	require.Equal(t, 0, res.code)
	require.Equal(t, "Alias 'docs' now points to collection 'docs_v3'", decodeMessage(t, res))

	res = h.run(t, "--uri", "http://localhost:19530", "alias", "drop", "docs")
	require.Equal(t, 0, res.code)
	require.Equal(t, "Alias 'docs' dropped", decodeMessage(t, res))
}

func TestUserCreate(t *testing.T) {
	h := &cliHarness{}

	res := h.run(t, "--uri", "http://localhost:19530",
		"user", "create", "--password", "hunter2", "alice")
	require.Equal(t, 0, res.code)
	require.Equal(t, 1, h.fake.CallCount("CreateUser"))
	require.Equal(t, "User 'alice' created", decodeMessage(t, res))
}

func TestUserCreateRequiresPassword(t *testing.T) {
	h := &cliHarness{}

	res := h.run(t, "--uri", "http://localhost:19530", "user", "create", "alice")
	require.Equal(t, 2, res.code)
	require.Contains(t, res.envelope(t).Error.Message, "--password is required")
	require.Zero(t, h.fake.Dials)
}

func TestUserList(t *testing.T) {
	h := &cliHarness{fake: &testutil.Fake{Users: []string{"root", "alice"}}}

	res := h.run(t, "--uri", "http://localhost:19530", "user", "list")
	require.Equal(t, 0, res.code)
	require.Equal(t, 2, *res.envelope(t).Meta.Count)
}

func TestUserPasswd(t *testing.T) {
	h := &cliHarness{}

	res := h.run(t, "--uri", "http://localhost:19530",
		"user", "passwd", "--old", "hunter2", "--new", "hunter3", "alice")
	require.Equal(t, 0, res.code)
	require.Equal(t, "Password updated for user 'alice'", decodeMessage(t, res))

	res = h.run(t, "--uri", "http://localhost:19530", "user", "passwd", "--old", "hunter2", "alice")
	require.Equal(t, 2, res.code)
	require.Contains(t, res.envelope(t).Error.Message, "--old and --new are both required")
}

func TestUserDrop(t *testing.T) {
	h := &cliHarness{}

	res := h.run(t, "--uri", "http://localhost:19530", "user", "drop", "alice")
	require.Equal(t, 0, res.code)
	require.Equal(t, "User 'alice' dropped", decodeMessage(t, res))
}

func TestRoleGrantArgumentOrder(t *testing.T) {
	h := &cliHarness{}

	// yami role grant <role> <user>
	res := h.run(t, "--uri", "http://localhost:19530", "role", "grant", "admin", "alice")
	require.Equal(t, 0, res.code)
	require.Equal(t, "alice", h.fake.LastUser)
	require.Equal(t, "admin", h.fake.LastRole)
	require.Equal(t, "Role 'admin' granted to user 'alice'", decodeMessage(t, res))
}

func TestRoleRevoke(t *testing.T) {
	h := &cliHarness{}

	res := h.run(t, "--uri", "http://localhost:19530", "role", "revoke", "admin", "alice")
	require.Equal(t, 0, res.code)
	require.Equal(t, "alice", h.fake.LastUser)
	require.Equal(t, "admin", h.fake.LastRole)
	require.Equal(t, "Role 'admin' revoked from user 'alice'", decodeMessage(t, res))
}

func TestRoleCreateListDrop(t *testing.T) {
	h := &cliHarness{fake: &testutil.Fake{Roles: []string{"admin", "reader"}}}

	res := h.run(t, "--uri", "http://localhost:19530", "role", "create", "writer")
	require.Equal(t, 0, res.code)
	require.Equal(t, "Role 'writer' created", decodeMessage(t, res))

	res = h.run(t, "--uri", "http://localhost:19530", "role", "list")
	require.Equal(t, 0, res.code)
	require.Equal(t, 2, *res.envelope(t).Meta.Count)

	res = h.run(t, "--uri", "http://localhost:19530", "role", "drop", "writer")
	require.Equal(t, 0, res.code)
	require.Equal(t, "Role 'writer' dropped", decodeMessage(t, res))
}
