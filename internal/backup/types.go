// Package backup decodes and encodes the portable record-set container.
// The decoder produces a typed representation; reconciliation never sees
// raw JSON.
package backup

import (
	"strconv"
	"time"

	"notevault-be/internal/entity"
	"notevault-be/pkg/crypt"
)

// RecordSet is the decoded backup container. All four sections are
// optional in the wire format; absent sections decode to empty values.
type RecordSet struct {
	Preferences map[string]string
	Metadata    []entity.Metadata
	Categories  []entity.Category
	Notes       []entity.Note
}

// Verification is the password-verification material carried in the
// metadata section of a private export.
type Verification struct {
	Hash    []byte
	Salt    []byte
	KeySalt []byte
	KDF     crypt.KDFVersion
}

// PasswordVerification extracts the verification entries, or nil when the
// backup carries none (public export, or no password was set).
func (rs *RecordSet) PasswordVerification() *Verification {
	v := &Verification{KDF: crypt.CurrentKDF}
	found := false
	for _, m := range rs.Metadata {
		switch m.Name {
		case entity.MetaPasswordHash:
			v.Hash = m.Value
			found = true
		case entity.MetaPasswordSalt:
			v.Salt = m.Value
		case entity.MetaKeySalt:
			v.KeySalt = m.Value
		case entity.MetaKDFVersion:
			if n, err := strconv.Atoi(string(m.Value)); err == nil {
				v.KDF = crypt.KDFVersion(n)
			}
		}
	}
	if !found {
		return nil
	}
	return v
}

// HasEncryptedNotes reports whether any note in the set carries ciphertext.
func (rs *RecordSet) HasEncryptedNotes() bool {
	for i := range rs.Notes {
		if rs.Notes[i].IsEncrypted() {
			return true
		}
	}
	return false
}

// timeLayout is the fixed ISO-8601 UTC format written by the encoder.
// The decoder additionally accepts legacy raw milliseconds-since-epoch.
const timeLayout = "2006-01-02T15:04:05.000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(timeLayout, s); err == nil {
		return t.UTC(), nil
	}
	ms, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}
	return time.UnixMilli(ms).UTC(), nil
}
