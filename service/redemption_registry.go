package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"

	"dkpbot/events"
)

const (
	defaultCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	defaultCodeLength   = 8
)

// rewardCode is the registry's record for one issued code. The usedBy
// set is guarded by the per-code mutex, which also spans the ledger
// credit during redemption so the check-then-act sequence is atomic.
type rewardCode struct {
	mu        sync.Mutex
	guildID   int64
	eventID   int64
	amount    int64
	creatorID int64
	usedBy    map[int64]struct{}
}

// RedemptionRegistry issues event reward codes and redeems them exactly
// once per user, crediting the ledger on success. The code table lives
// in process memory and is lost on restart; ledger credits already
// applied survive.
type RedemptionRegistry struct {
	mu       sync.Mutex
	codes    map[string]*rewardCode
	catalog  *EventCatalog
	ledger   LedgerService
	eventBus *events.Bus

	// overridable in tests to force collisions
	alphabet   string
	codeLength int
}

// NewRedemptionRegistry creates a new redemption registry
func NewRedemptionRegistry(catalog *EventCatalog, ledger LedgerService, eventBus *events.Bus) *RedemptionRegistry {
	return &RedemptionRegistry{
		codes:      make(map[string]*rewardCode),
		catalog:    catalog,
		ledger:     ledger,
		eventBus:   eventBus,
		alphabet:   defaultCodeAlphabet,
		codeLength: defaultCodeLength,
	}
}

// IssueCode generates a unique reward code for an event and registers
// it with an empty redeemer set. Generation retries until the code does
// not collide with any live code.
func (r *RedemptionRegistry) IssueCode(eventID, guildID int64, amount int64, creatorID int64) (string, error) {
	if amount <= 0 {
		return "", NewValidationError("amount", "must be positive")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	code := r.generateCode()
	for _, exists := r.codes[code]; exists; _, exists = r.codes[code] {
		code = r.generateCode()
	}

	r.codes[code] = &rewardCode{
		guildID:   guildID,
		eventID:   eventID,
		amount:    amount,
		creatorID: creatorID,
		usedBy:    make(map[int64]struct{}),
	}

	log.WithFields(log.Fields{
		"eventID": eventID,
		"guildID": guildID,
		"amount":  amount,
	}).Info("Issued reward code")

	return code, nil
}

func (r *RedemptionRegistry) generateCode() string {
	var b strings.Builder
	b.Grow(r.codeLength)
	for i := 0; i < r.codeLength; i++ {
		b.WriteByte(r.alphabet[rand.Intn(len(r.alphabet))])
	}
	return b.String()
}

// Redeem credits the code's reward amount to the user exactly once.
// The per-code lock covers the redeemed check, the ledger credit and
// the redeemer-set insert: if the credit fails the user is not marked
// as redeemed and may retry.
func (r *RedemptionRegistry) Redeem(ctx context.Context, code string, guildID, userID int64) (*RedemptionResult, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	r.mu.Lock()
	rc, ok := r.codes[code]
	r.mu.Unlock()

	if !ok {
		return nil, ErrCodeNotFound
	}

	// guildID is immutable after issuance, safe to check outside the lock
	if rc.guildID != guildID {
		return nil, ErrWrongGuild
	}

	eventName := fmt.Sprintf("Event %d", rc.eventID)
	if event, found := r.catalog.Get(rc.eventID); found {
		eventName = event.Name
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()

	if _, used := rc.usedBy[userID]; used {
		return nil, ErrAlreadyRedeemed
	}

	reason := fmt.Sprintf("Event reward (%s)", eventName)
	newTotal, err := r.ledger.AddPoints(ctx, guildID, userID, rc.amount, reason)
	if err != nil {
		return nil, fmt.Errorf("failed to credit reward: %w", err)
	}

	rc.usedBy[userID] = struct{}{}

	r.eventBus.Publish(ctx, events.CodeRedeemedEvent{
		GuildID:   guildID,
		UserID:    userID,
		Code:      code,
		Amount:    rc.amount,
		EventName: eventName,
	})

	return &RedemptionResult{
		Amount:    rc.amount,
		EventName: eventName,
		NewTotal:  newTotal,
	}, nil
}
