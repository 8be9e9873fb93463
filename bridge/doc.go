// Package bridge converts between value trees and other document formats:
// JSON (with comments and trailing commas), YAML and CBOR.
//
// The conversions keep container order wherever the source format has one.
// JSON objects and YAML mappings keep member order, with a repeated key
// replacing the earlier value in place, matching how packed maps are
// decoded. CBOR maps carry no order after decoding, so their pairs are
// sorted by the packed encoding of the key.
//
// Bytes have no JSON counterpart and are written as base64 strings. ToJSON
// rejects maps with non-string keys; ToCBOR accepts any key.
package bridge
