package backup

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"notevault-be/internal/entity"
	"notevault-be/internal/pkg/syncerr"
)

// Wire structures. Content is literal text below PRIVATE_ENCRYPTED and
// base64 ciphertext at or above it; metadata values are always base64.
type container struct {
	Preferences map[string]string `json:"preferences,omitempty"`
	Metadata    []metadataRecord  `json:"metadata,omitempty"`
	Categories  []categoryRecord  `json:"categories,omitempty"`
	Notes       []noteRecord      `json:"notes,omitempty"`
}

type metadataRecord struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type categoryRecord struct {
	Id   int64  `json:"id"`
	Name string `json:"name"`
}

type noteRecord struct {
	Id              int64  `json:"id"`
	CategoryId      int64  `json:"categoryId"`
	CreateTime      string `json:"createTime"`
	ModTime         string `json:"modTime"`
	PrivacyLevel    int    `json:"privacyLevel"`
	EncryptionLevel int    `json:"encryptionLevel,omitempty"`
	Content         string `json:"content"`
}

// Decode parses raw backup bytes into a RecordSet. Structural violations
// yield syncerr.ErrMalformedInput; nothing is mutated by decoding.
func Decode(raw []byte) (*RecordSet, error) {
	var c container
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", syncerr.ErrMalformedInput, err)
	}

	rs := &RecordSet{Preferences: c.Preferences}

	for _, m := range c.Metadata {
		if m.Name == "" {
			return nil, fmt.Errorf("%w: metadata entry without name", syncerr.ErrMalformedInput)
		}
		value, err := base64.StdEncoding.DecodeString(m.Value)
		if err != nil {
			return nil, fmt.Errorf("%w: metadata %q: %v", syncerr.ErrMalformedInput, m.Name, err)
		}
		rs.Metadata = append(rs.Metadata, entity.Metadata{Name: m.Name, Value: value})
	}

	for _, cat := range c.Categories {
		if cat.Name == "" {
			return nil, fmt.Errorf("%w: category %d without name", syncerr.ErrMalformedInput, cat.Id)
		}
		rs.Categories = append(rs.Categories, entity.Category{Id: cat.Id, Name: cat.Name})
	}

	for i, n := range c.Notes {
		note, err := decodeNote(n)
		if err != nil {
			return nil, fmt.Errorf("%w: note %d: %v", syncerr.ErrMalformedInput, i, err)
		}
		rs.Notes = append(rs.Notes, *note)
	}

	return rs, nil
}

func decodeNote(n noteRecord) (*entity.Note, error) {
	if n.PrivacyLevel < 0 {
		return nil, fmt.Errorf("negative privacy level %d", n.PrivacyLevel)
	}
	createTime, err := parseTime(n.CreateTime)
	if err != nil {
		return nil, fmt.Errorf("createTime: %v", err)
	}
	modTime, err := parseTime(n.ModTime)
	if err != nil {
		return nil, fmt.Errorf("modTime: %v", err)
	}

	privacy := entity.PrivacyLevel(n.PrivacyLevel)
	// Backups from old releases carried a separate encryption level; any
	// nonzero value means the content is ciphertext.
	if n.EncryptionLevel > 0 && privacy < entity.PrivacyPrivateEncrypted {
		privacy = entity.PrivacyPrivateEncrypted
	}

	var content []byte
	if privacy >= entity.PrivacyPrivateEncrypted {
		content, err = base64.StdEncoding.DecodeString(n.Content)
		if err != nil {
			return nil, fmt.Errorf("ciphertext: %v", err)
		}
	} else {
		content = []byte(n.Content)
	}

	return &entity.Note{
		Id:         n.Id,
		CategoryId: n.CategoryId,
		CreateTime: createTime,
		ModTime:    modTime,
		Privacy:    privacy,
		Content:    content,
	}, nil
}

// Encode serializes a RecordSet into backup bytes.
func Encode(rs *RecordSet) ([]byte, error) {
	c := container{Preferences: rs.Preferences}

	for _, m := range rs.Metadata {
		c.Metadata = append(c.Metadata, metadataRecord{
			Name:  m.Name,
			Value: base64.StdEncoding.EncodeToString(m.Value),
		})
	}

	for _, cat := range rs.Categories {
		c.Categories = append(c.Categories, categoryRecord{Id: cat.Id, Name: cat.Name})
	}

	for i := range rs.Notes {
		n := &rs.Notes[i]
		rec := noteRecord{
			Id:           n.Id,
			CategoryId:   n.CategoryId,
			CreateTime:   formatTime(n.CreateTime),
			ModTime:      formatTime(n.ModTime),
			PrivacyLevel: int(n.Privacy),
		}
		if n.IsEncrypted() {
			rec.EncryptionLevel = 1
			rec.Content = base64.StdEncoding.EncodeToString(n.Content)
		} else {
			rec.Content = string(n.Content)
		}
		c.Notes = append(c.Notes, rec)
	}

	return json.MarshalIndent(&c, "", "  ")
}
