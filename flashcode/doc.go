// Package flashcode implements the FLASHcode codec. A code is a
// dash-separated string such as
//
//	000000-000000-0-000000-000000
//
// carrying a 24-byte payload written in a 64-symbol alphabet:
//   - Four 6-symbol data groups hold the payload bytes in order.
//   - The single-symbol middle group is a Luhn-style check digit derived
//     from the payload.
//   - The legacy 15-character form (two data groups plus check digit) decodes
//     as if the two missing groups were all zero symbols.
//
// Feature options are named bit ranges inside the payload bytes. They are
// described by a Catalog, which is loaded once (JSON, TOML or CBOR) and
// passed to every Code that needs option names.
package flashcode
