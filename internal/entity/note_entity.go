package entity

import "time"

// PrivacyLevel governs how note content is stored. PUBLIC and PRIVATE_PLAIN
// notes hold plaintext; PRIVATE_ENCRYPTED and above hold ciphertext produced
// under the store's active key.
type PrivacyLevel int

const (
	PrivacyPublic           PrivacyLevel = 0
	PrivacyPrivatePlain     PrivacyLevel = 1
	PrivacyPrivateEncrypted PrivacyLevel = 2
)

type Note struct {
	Id         int64
	CategoryId int64
	CreateTime time.Time
	ModTime    time.Time
	Privacy    PrivacyLevel
	// Content is plaintext bytes when Privacy < PrivacyPrivateEncrypted,
	// ciphertext otherwise.
	Content []byte
}

func (n *Note) IsPrivate() bool {
	return n.Privacy >= PrivacyPrivatePlain
}

func (n *Note) IsEncrypted() bool {
	return n.Privacy >= PrivacyPrivateEncrypted
}

// SameIdentity reports whether other is the same record under the
// reconciliation identity (id, createTime). Two notes sharing an id but
// differing in createTime are distinct records that collide on id.
func (n *Note) SameIdentity(other *Note) bool {
	return n.Id == other.Id && n.CreateTime.Equal(other.CreateTime)
}
