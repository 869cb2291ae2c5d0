// Package schema parses the colon-delimited field syntax used to declare
// Milvus collection schemas on the command line.
//
// Each field is a single argument of the form:
//
//	name:type[:param][:modifier...]
//
// Supported types:
//   - bool, int8, int16, int32, int64, float, double
//   - varchar[:max_length] (default 65535), string (alias for varchar)
//   - json
//   - array:element_type[:max_capacity] (default 4096)
//   - float_vector:dim, binary_vector:dim, float16_vector:dim,
//     bfloat16_vector:dim (dim is required)
//   - sparse_vector (no dim)
//
// Modifiers:
//   - pk: marks the primary key field (exactly one per schema)
//   - auto: server-generated ids (requires pk)
//   - a metric name (COSINE, L2, IP, HAMMING, JACCARD) on vector fields,
//     used when auto-building indexes; defaults to COSINE (IP for sparse)
//
// Examples:
//
//	id:int64:pk:auto
//	title:varchar:256
//	embedding:float_vector:768:L2
//	tags:array:varchar:100
//	keywords:sparse_vector
//
// Usage:
//
//	fields, err := schema.ParseFields([]string{
//		"id:int64:pk:auto",
//		"embedding:float_vector:768",
//	})
//	if err != nil {
//		return err
//	}
//	collSchema := schema.Build("articles", "", fields, false)
//
// All parse failures are validation errors that name the offending field.
package schema
