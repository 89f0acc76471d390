package tx

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
)

// DefaultReplayCacheSize bounds the set of remembered applied request IDs.
const DefaultReplayCacheSize = 4096

// ApplyContext provides what a handler needs to apply one request.
type ApplyContext struct {
	// Height is the block the request is applied in
	Height uint64

	// Hash is the request ID
	Hash [32]byte

	// Signer is the verified address that signed the request
	Signer string

	Log logrus.FieldLogger
}

// Handler applies one request type to on-chain state.
type Handler interface {
	Apply(ctx context.Context, actx *ApplyContext, t Transaction) Result
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, actx *ApplyContext, t Transaction) Result

func (f HandlerFunc) Apply(ctx context.Context, actx *ApplyContext, t Transaction) Result {
	return f(ctx, actx, t)
}

// ApplyResult is the receipt of one applied request.
type ApplyResult struct {
	Result  Result
	Hash    [32]byte
	Applied bool
}

// HashHex returns the request ID in upper-case hex.
func (r ApplyResult) HashHex() string {
	return strings.ToUpper(hex.EncodeToString(r.Hash[:]))
}

// Engine routes verified requests to handlers.
type Engine struct {
	mu      sync.RWMutex
	routes  map[Type]Handler
	applied *lru.Cache[[32]byte, uint64]
	log     logrus.FieldLogger
}

// NewEngine creates an engine remembering up to replayCache applied IDs.
func NewEngine(replayCache int, log logrus.FieldLogger) (*Engine, error) {
	if replayCache <= 0 {
		replayCache = DefaultReplayCacheSize
	}
	cache, err := lru.New[[32]byte, uint64](replayCache)
	if err != nil {
		return nil, fmt.Errorf("create replay cache: %w", err)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{
		routes:  make(map[Type]Handler),
		applied: cache,
		log:     log.WithField("module", "engine"),
	}, nil
}

// Route installs the handler for a request type, replacing any previous one.
func (e *Engine) Route(t Type, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.routes[t] = h
}

func (e *Engine) handler(t Type) (Handler, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	h, ok := e.routes[t]
	return h, ok
}

// Preflight runs the checks that need no state: field validation, routing
// and signature.
func (e *Engine) Preflight(t Transaction) Result {
	if err := t.Validate(); err != nil {
		return ResultOf(err, TemMALFORMED)
	}
	if _, ok := e.handler(t.TxType()); !ok {
		return TemUNKNOWN
	}
	if err := VerifySignature(t); err != nil {
		return TemBAD_SIGNATURE
	}
	return TesSUCCESS
}

// Apply preflights t, rejects replays and hands it to its handler.
// Signatures are deterministic, so resubmitting the same request with the
// same signer produces the same hash and gets tefALREADY. That is a host
// level duplicate check; handlers never see the second copy.
func (e *Engine) Apply(ctx context.Context, t Transaction, height uint64) ApplyResult {
	hash, err := Hash(t)
	if err != nil {
		return ApplyResult{Result: TemMALFORMED}
	}
	res := ApplyResult{Hash: hash}

	entry := e.log.WithFields(logrus.Fields{
		"height": height,
		"type":   t.TxType().String(),
		"hash":   res.HashHex(),
	})

	if res.Result = e.Preflight(t); !res.Result.IsSuccess() {
		entry.WithField("result", res.Result).Debug("preflight failed")
		return res
	}
	if _, seen := e.applied.Get(hash); seen {
		res.Result = TefALREADY
		return res
	}

	h, _ := e.handler(t.TxType())
	actx := &ApplyContext{
		Height: height,
		Hash:   hash,
		Signer: t.GetCommon().Account,
		Log:    entry,
	}
	res.Result = h.Apply(ctx, actx, t)
	if res.Result.IsSuccess() {
		res.Applied = true
		e.applied.Add(hash, height)
	}
	return res
}
