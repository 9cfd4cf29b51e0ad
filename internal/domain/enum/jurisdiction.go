package enum

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
)

// Jurisdiction classifies a party relative to the firm for GST purposes
type Jurisdiction string

const (
	// JurisdictionIntra is a same-state party: CGST + SGST apply
	JurisdictionIntra Jurisdiction = "INTRA"
	// JurisdictionInter is an out-of-state party: IGST applies
	JurisdictionInter Jurisdiction = "INTER"
)

// ParseJurisdiction maps free text onto a jurisdiction. Anything that is not
// INTER is INTRA.
func ParseJurisdiction(s string) Jurisdiction {
	if strings.EqualFold(strings.TrimSpace(s), string(JurisdictionInter)) {
		return JurisdictionInter
	}
	return JurisdictionIntra
}

func (j Jurisdiction) String() string {
	return string(ParseJurisdiction(string(j)))
}

// IsInter reports whether the single-rate (IGST) rule applies
func (j Jurisdiction) IsInter() bool {
	return ParseJurisdiction(string(j)) == JurisdictionInter
}

func (j Jurisdiction) MarshalJSON() ([]byte, error) {
	return json.Marshal(j.String())
}

func (j *Jurisdiction) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*j = ParseJurisdiction(str)
	return nil
}

func (j Jurisdiction) Value() (driver.Value, error) {
	return j.String(), nil
}

func (j *Jurisdiction) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*j = JurisdictionIntra
	case string:
		*j = ParseJurisdiction(v)
	case []byte:
		*j = ParseJurisdiction(string(v))
	}
	return nil
}
