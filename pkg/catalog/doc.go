/*
Package catalog keeps generated saved objects between runs.

`dashgen generate --catalog DIR` stores every record it writes, keyed by id.
`dashgen bundle --catalog DIR --id ID...` pulls records back out and combines
them into a new export, without regenerating or re-reading old files.

# Backends

All backends implement the Catalog interface:
  - memory: in-process map, for tests
  - badger: BadgerDB under a directory, for the CLI

Records are stored as their compact export line together with an xxhash
fingerprint. Put compares fingerprints and skips records that did not change,
so re-running generate on an unchanged blueprint writes nothing.

# Usage Example

	cat, err := badger.New(badger.Config{Path: "./catalog"})
	if err != nil {
	    return err
	}
	defer cat.Close()

	if _, err := cat.Put(ctx, records); err != nil {
	    return err
	}
	picked, err := cat.Get(ctx, "trivy-reports", "trivy-security-overview")
*/
package catalog
