package models

import (
	"bytes"
	"encoding/json"
)

// AmountField keeps a period amount exactly as it arrived: nil, a json.Number
// or a string. Both bare values and {"金額": value} objects are accepted.
type AmountField struct {
	Raw interface{}
}

func (a *AmountField) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(data, &obj); err != nil {
			return err
		}
		inner, ok := obj["金額"]
		if !ok {
			a.Raw = nil
			return nil
		}
		data = bytes.TrimSpace(inner)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return err
	}
	a.Raw = v
	return nil
}

func (a AmountField) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]interface{}{"金額": a.Raw})
}

// AccountInput is one line item of the request payload.
type AccountInput struct {
	Name     string      `json:"勘定科目"`
	Category string      `json:"分類,omitempty"`
	Prev2    AmountField `json:"前々期"`
	Prev1    AmountField `json:"前期"`
	Current  AmountField `json:"今期"`
}

// RequestMeta is echoed back untouched in every response.
type RequestMeta struct {
	CaseID          string `json:"ai_case_id,omitempty"`
	PostingPeriod   string `json:"postingPeriod,omitempty"`
	CSVDownloadName string `json:"csvdownloadfilename,omitempty"`
}

// PipelineRequest is the input contract of the mapping pipeline. SGA and MFG
// also accept their legacy Japanese keys. DraftText bypasses the classifier
// with a manually prepared draft in the delimited line format.
type PipelineRequest struct {
	BS        []AccountInput `json:"BS"`
	PL        []AccountInput `json:"PL"`
	SGA       []AccountInput `json:"SGA"`
	MFG       []AccountInput `json:"MFG"`
	LegacySGA []AccountInput `json:"販売費,omitempty"`
	LegacyMFG []AccountInput `json:"製造原価,omitempty"`
	DraftText string         `json:"draft,omitempty"`
	RequestMeta
}

// SectionInputs returns the raw line items of a section, falling back to the
// legacy key when the primary one is empty.
func (r *PipelineRequest) SectionInputs(s Section) []AccountInput {
	switch s {
	case SectionBS:
		return r.BS
	case SectionPL:
		return r.PL
	case SectionSGA:
		if len(r.SGA) == 0 {
			return r.LegacySGA
		}
		return r.SGA
	case SectionMFG:
		if len(r.MFG) == 0 {
			return r.LegacyMFG
		}
		return r.MFG
	}
	return nil
}
