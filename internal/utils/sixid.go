package utils

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/x/bsonx/bsoncore"
)

// SixID is a 6-byte random identifier used for primary-store documents
// (listings, users, invoices, inquiries). It renders as 10 characters
// of Crockford Base32 and is stored in BSON as BinData with custom
// subtype 0x80. Free-store records keep their legacy serial integers;
// a SixID never addresses those.
type SixID [6]byte

// SixIDHookFunc is the signature of the NewSixID test hook. It returns
// an ID and whether to override the default random generation.
type SixIDHookFunc func() (id SixID, override bool)

// NewSixIDHook lets tests make ID generation deterministic.
var NewSixIDHook SixIDHookFunc

// NewSixID creates a new random SixID.
func NewSixID() SixID {
	if NewSixIDHook != nil {
		if id, override := NewSixIDHook(); override {
			return id
		}
	}

	var id SixID
	if _, err := rand.Read(id[:]); err != nil {
		// crypto/rand failing is effectively unrecoverable; a zero ID
		// will collide and be retried by the insert path.
		return SixID{}
	}
	return id
}

// Crockford Base32 alphabet (uppercase, no I L O U).
const crockfordAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

var crockfordDecodeMap = func() map[byte]byte {
	m := make(map[byte]byte, 40)
	for i := 0; i < len(crockfordAlphabet); i++ {
		m[crockfordAlphabet[i]] = byte(i)
		if crockfordAlphabet[i] >= 'A' {
			m[crockfordAlphabet[i]+'a'-'A'] = byte(i)
		}
	}
	// Commonly confused characters decode leniently.
	m['o'], m['O'] = m['0'], m['0']
	m['i'], m['I'] = m['1'], m['1']
	m['l'], m['L'] = m['1'], m['1']
	return m
}()

// String returns the 10-character Crockford Base32 form of the ID.
func (u SixID) String() string {
	// 6 bytes = 48 bits = 10 base32 characters (last one partial).
	result := make([]byte, 0, 10)
	var bits, offset uint
	for i := 0; i < 6; i++ {
		bits |= uint(u[i]) << offset
		offset += 8
		for offset >= 5 {
			result = append(result, crockfordAlphabet[bits&0x1F])
			bits >>= 5
			offset -= 5
		}
	}
	if offset > 0 {
		result = append(result, crockfordAlphabet[bits&0x1F])
	}
	return string(result)
}

// ParseSixID parses the Crockford Base32 form back into a SixID.
// Hyphens and spaces are tolerated; an empty string parses to the zero
// ID.
func ParseSixID(s string) (SixID, error) {
	if s == "" {
		return SixID{}, nil
	}
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, " ", "")
	if len(s) != 10 {
		return SixID{}, errors.New("SixID string must be 10 characters")
	}

	var id SixID
	var bits uint64
	var offset uint
	byteIndex := 0
	for i := 0; i < 10; i++ {
		val, ok := crockfordDecodeMap[s[i]]
		if !ok {
			return SixID{}, errors.New("invalid character in SixID string")
		}
		bits |= uint64(val) << offset
		offset += 5
		for offset >= 8 && byteIndex < 6 {
			id[byteIndex] = byte(bits & 0xFF)
			byteIndex++
			bits >>= 8
			offset -= 8
		}
	}
	if byteIndex != 6 {
		return SixID{}, errors.New("SixID string did not decode to 6 bytes")
	}
	return id, nil
}

// IsZero reports whether the ID is unset.
func (u SixID) IsZero() bool {
	return u == SixID{}
}

// MarshalBSONValue stores the ID as BinData subtype 0x80.
func (u SixID) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.TypeBinary, bsoncore.AppendBinary(nil, 0x80, u[:]), nil
}

// UnmarshalBSONValue restores the ID from BinData subtype 0x80.
func (u *SixID) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	if t == bson.TypeNull {
		*u = SixID{}
		return nil
	}
	if t != bson.TypeBinary {
		return errors.New("SixID: expected BSON binary")
	}
	subtype, bin, _, ok := bsoncore.ReadBinary(data)
	if !ok || subtype != 0x80 || len(bin) != 6 {
		return errors.New("SixID: invalid BSON binary payload")
	}
	copy((*u)[:], bin)
	return nil
}

// MarshalJSON renders the ID as its Crockford Base32 string.
func (u SixID) MarshalJSON() ([]byte, error) {
	return json.Marshal(u.String())
}

// UnmarshalJSON parses the ID from its Crockford Base32 string.
func (u *SixID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseSixID(s)
	if err != nil {
		return err
	}
	*u = parsed
	return nil
}
