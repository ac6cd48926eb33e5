// JSON record structures for the JSONL data files.
package sqlite

// games.jsonl holds one cleaned types.Game document per line, keyed by "id".

// userJSON represents a user in users.jsonl.
type userJSON struct {
	UserID       string `json:"user_id"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash"`
	CreatedAt    string `json:"created_at"`
}
