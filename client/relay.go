package client

import (
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/holiman/uint256"

	"github.com/galleon-dao/galleon"
	"github.com/galleon-dao/galleon/errors"
	"github.com/galleon-dao/galleon/x/relay"
)

// RelaySubmission is the body a relayer accepts: the signed request
// together with its signature.
type RelaySubmission struct {
	Request   RequestJSON `json:"request"`
	Signature string      `json:"signature"`
}

// RequestJSON mirrors relay.ForwardRequest on the wire. Value, gas and
// nonce are decimal strings, addresses and data are 0x-prefixed hex.
type RequestJSON struct {
	From  string `json:"from"`
	To    string `json:"to"`
	Value string `json:"value"`
	Gas   string `json:"gas"`
	Nonce string `json:"nonce"`
	Data  string `json:"data"`
}

// RelayResponse carries the digest-derived transaction id of an accepted
// submission.
type RelayResponse struct {
	TxID string `json:"txId"`
}

// RelayError is the structured error body of a rejected submission.
type RelayError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Decode converts a submission into the domain request and raw signature.
func (s RelaySubmission) Decode() (relay.ForwardRequest, []byte, error) {
	var req relay.ForwardRequest

	from, err := galleon.ParseAddress(s.Request.From)
	if err != nil {
		return req, nil, errors.Wrap(err, "from")
	}
	to, err := galleon.ParseAddress(s.Request.To)
	if err != nil {
		return req, nil, errors.Wrap(err, "to")
	}
	value, err := parseAmount(s.Request.Value)
	if err != nil {
		return req, nil, errors.Wrap(err, "value")
	}
	gas, err := strconv.ParseUint(orZero(s.Request.Gas), 10, 64)
	if err != nil {
		return req, nil, errors.Wrap(errors.ErrInput, "gas is not a decimal string")
	}
	nonce, err := strconv.ParseInt(orZero(s.Request.Nonce), 10, 64)
	if err != nil || nonce < 0 {
		return req, nil, errors.Wrap(errors.ErrInput, "nonce is not a decimal string")
	}
	data, err := parseHex(s.Request.Data)
	if err != nil {
		return req, nil, errors.Wrap(err, "data")
	}
	sig, err := parseHex(s.Signature)
	if err != nil {
		return req, nil, errors.Wrap(err, "signature")
	}

	req = relay.ForwardRequest{
		From:     from,
		To:       to,
		Value:    value,
		Gas:      gas,
		Sequence: nonce,
		Data:     data,
	}
	return req, sig, nil
}

// Encode converts a domain request and signature into the wire form, for
// clients submitting to a relayer.
func Encode(req relay.ForwardRequest, sig []byte) RelaySubmission {
	value := req.Value
	if value == nil {
		value = uint256.NewInt(0)
	}
	return RelaySubmission{
		Request: RequestJSON{
			From:  "0x" + strings.ToLower(hex.EncodeToString(req.From)),
			To:    "0x" + strings.ToLower(hex.EncodeToString(req.To)),
			Value: value.Dec(),
			Gas:   strconv.FormatUint(req.Gas, 10),
			Nonce: strconv.FormatInt(req.Sequence, 10),
			Data:  "0x" + hex.EncodeToString(req.Data),
		},
		Signature: "0x" + hex.EncodeToString(sig),
	}
}

// TxID derives the submission identifier from the signed digest.
func TxID(digest []byte) string {
	return "0x" + hex.EncodeToString(digest)
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

func parseAmount(s string) (*uint256.Int, error) {
	value, err := uint256.FromDecimal(orZero(s))
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, "not a decimal string")
	}
	return value, nil
}

func parseHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return nil, nil
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, errors.Wrap(errors.ErrInput, "not a hex string")
	}
	return raw, nil
}
