package entity

// Well-known metadata names. The password entries exist only while a
// password is configured; their absence means "no password".
const (
	MetaPasswordHash = "password.hash"
	MetaPasswordSalt = "password.salt"
	MetaKeySalt      = "password.key_salt"
	MetaKDFVersion   = "password.kdf"
)

type Metadata struct {
	Name  string
	Value []byte
}
