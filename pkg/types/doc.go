// Package types defines the Vault and table interfaces, the Game and User
// entity types, the filter and sort descriptors used to narrow a collection,
// and the standard error values for the GameVault storage system.
package types
