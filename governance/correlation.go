//   Copyright (C) 2018 TASChain
//
//   This program is free software: you can redistribute it and/or modify
//   it under the terms of the GNU General Public License as published by
//   the Free Software Foundation, either version 3 of the License, or
//   (at your option) any later version.
//
//   This program is distributed in the hope that it will be useful,
//   but WITHOUT ANY WARRANTY; without even the implied warranty of
//   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//   GNU General Public License for more details.
//
//   You should have received a copy of the GNU General Public License
//   along with this program.  If not, see <https://www.gnu.org/licenses/>.

package governance

import (
	"bytes"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/sha3"
)

const requestIDLength = 32

// CorrelationMessage travels with a transfer call so the confirmation can be
// matched to the vote that asked for it.
type CorrelationMessage struct {
	ProposalID uint64 `json:"proposal_id"`
	OptionName string `json:"option_name"`
	RequestID  string `json:"request_id"`
}

type correlationWire struct {
	ProposalID *uint64 `json:"proposal_id"`
	OptionName *string `json:"option_name"`
	RequestID  *string `json:"request_id"`
}

func (m *CorrelationMessage) Encode() (string, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParseCorrelationMessage decodes msg, every field is required and unknown fields are refused.
func ParseCorrelationMessage(msg string) (*CorrelationMessage, error) {
	dec := json.NewDecoder(strings.NewReader(msg))
	dec.DisallowUnknownFields()

	var w correlationWire
	if err := dec.Decode(&w); err != nil {
		return nil, errors.Wrapf(ErrMalformedCorrelation, "decode: %v", err)
	}
	if dec.More() {
		return nil, errors.Wrap(ErrMalformedCorrelation, "trailing data")
	}
	if w.ProposalID == nil {
		return nil, errors.Wrap(ErrMalformedCorrelation, "missing proposal_id")
	}
	if w.OptionName == nil || *w.OptionName == "" {
		return nil, errors.Wrap(ErrMalformedCorrelation, "missing option_name")
	}
	if w.RequestID == nil || !isRequestID(*w.RequestID) {
		return nil, errors.Wrap(ErrMalformedCorrelation, "missing or illegal request_id")
	}
	return &CorrelationMessage{
		ProposalID: *w.ProposalID,
		OptionName: *w.OptionName,
		RequestID:  *w.RequestID,
	}, nil
}

func isRequestID(s string) bool {
	if len(s) != requestIDLength {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}

// newRequestID derives a fresh id from parts and random salt.
func newRequestID(parts ...[]byte) string {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		panic(err)
	}
	h := sha3.Sum256(bytes.Join(append(parts, salt), []byte{0}))
	return hex.EncodeToString(h[:requestIDLength/2])
}
