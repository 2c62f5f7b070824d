package main

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/tendermint/tendermint/libs/log"

	"github.com/galleon-dao/galleon"
	"github.com/galleon-dao/galleon/client"
	"github.com/galleon-dao/galleon/x/relay"
)

// Server exposes the forwarder over HTTP. It is thin glue: decode the
// submission, run it, report the outcome.
//
// The store and the ledger state behind it expect calls to be admitted
// one at a time, so a mutex serializes every access made from the
// concurrent handler goroutines.
type Server struct {
	fwd    *relay.Forwarder
	mu     sync.Mutex
	db     galleon.CacheableKVStore
	now    func() galleon.Context
	logger log.Logger
}

func NewServer(fwd *relay.Forwarder, db galleon.CacheableKVStore, now func() galleon.Context, logger log.Logger) *Server {
	return &Server{fwd: fwd, db: db, now: now, logger: logger}
}

func (s *Server) Router() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/relay", s.handleRelay)
	mux.HandleFunc("/sequence/", s.handleSequence)
	return mux
}

func (s *Server) handleRelay(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method", "POST only")
		return
	}
	var sub client.RelaySubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		writeError(w, http.StatusBadRequest, "body", err.Error())
		return
	}
	req, sig, err := sub.Decode()
	if err != nil {
		writeError(w, http.StatusBadRequest, "request", err.Error())
		return
	}

	s.mu.Lock()
	_, err = s.fwd.Execute(s.now(), s.db, req, sig)
	s.mu.Unlock()
	if err != nil {
		s.logger.Info("relay rejected", "from", req.From, "err", err)
		status := http.StatusBadRequest
		if relay.ErrInvalidMetaTransaction.Is(err) {
			status = http.StatusForbidden
		}
		writeError(w, status, errorName(err), err.Error())
		return
	}

	digest := s.fwd.Digest(req)
	s.logger.Info("relayed", "from", req.From, "to", req.To, "sequence", req.Sequence)
	writeJSON(w, http.StatusOK, client.RelayResponse{TxID: client.TxID(digest)})
}

func (s *Server) handleSequence(w http.ResponseWriter, r *http.Request) {
	addr, err := galleon.ParseAddress(r.URL.Path[len("/sequence/"):])
	if err != nil {
		writeError(w, http.StatusBadRequest, "address", err.Error())
		return
	}
	s.mu.Lock()
	seq, err := s.fwd.CurrentSequence(s.db, addr)
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "sequence", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"sequence": seq})
}

func errorName(err error) string {
	switch {
	case relay.ErrInvalidMetaTransaction.Is(err):
		return "invalid meta transaction"
	case relay.ErrInsufficientBalance.Is(err):
		return "insufficient forwarder balance"
	default:
		return "rejected"
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, name, message string) {
	writeJSON(w, status, client.RelayError{Error: name, Message: message})
}
