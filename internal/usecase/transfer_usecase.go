package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/bankledger/internal/domain"
)

// TransferUseCase moves money between two accounts in one atomic unit.
type TransferUseCase struct {
	txManager       TransactionManager
	accountRepo     AccountRepository
	transactionRepo TransactionRepository
	outboxRepo      OutboxRepository
	limits          *LimitTracker
	idGen           IDGenerator
	codeGen         TrackingCodeGenerator
	clock           Clock
	retrier         Retrier
	observer        TransferObserver
	timeout         time.Duration
}

// TransferOption configures optional TransferUseCase collaborators.
type TransferOption func(*TransferUseCase)

// WithRetrier retries whole units on serialization failures and deadlocks.
func WithRetrier(r Retrier) TransferOption {
	return func(uc *TransferUseCase) { uc.retrier = r }
}

// WithObserver reports transfer outcomes.
func WithObserver(o TransferObserver) TransferOption {
	return func(uc *TransferUseCase) { uc.observer = o }
}

// WithTransactionTimeout overrides DefaultTransactionTimeout.
func WithTransactionTimeout(d time.Duration) TransferOption {
	return func(uc *TransferUseCase) {
		if d > 0 {
			uc.timeout = d
		}
	}
}

// NewTransferUseCase creates a new TransferUseCase.
func NewTransferUseCase(
	txManager TransactionManager,
	accountRepo AccountRepository,
	transactionRepo TransactionRepository,
	outboxRepo OutboxRepository,
	limits *LimitTracker,
	idGen IDGenerator,
	codeGen TrackingCodeGenerator,
	clock Clock,
	opts ...TransferOption,
) *TransferUseCase {
	uc := &TransferUseCase{
		txManager:       txManager,
		accountRepo:     accountRepo,
		transactionRepo: transactionRepo,
		outboxRepo:      outboxRepo,
		limits:          limits,
		idGen:           idGen,
		codeGen:         codeGen,
		clock:           clock,
		timeout:         DefaultTransactionTimeout,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// TransferInput represents input for a transfer.
// For card-to-card both refs are card numbers. For interbank channels the
// sender is an account id and the receiver an IBAN.
type TransferInput struct {
	SenderRef   string
	ReceiverRef string
	Amount      decimal.Decimal
	Channel     domain.Channel
	// InitiatorUserID, when set, must own the sending account.
	InitiatorUserID string
}

// TransferResult is returned for a committed transfer.
type TransferResult struct {
	TrackingCode     string
	NewSenderBalance decimal.Decimal
	Transaction      *domain.Transaction
}

// Transfer validates and executes a transfer. Either both balances change,
// the limit is consumed and a ledger record is appended, or nothing but a
// limit window reset is persisted.
func (uc *TransferUseCase) Transfer(ctx context.Context, input TransferInput) (*TransferResult, error) {
	start := uc.clock.Now()

	req := domain.TransferRequest{
		SenderRef:   input.SenderRef,
		ReceiverRef: input.ReceiverRef,
		Amount:      input.Amount,
		Channel:     input.Channel,
	}
	if req.Channel.IsInterbank() {
		req.ReceiverRef = domain.NormalizeIBAN(req.ReceiverRef)
	}

	result, err := uc.transfer(ctx, req, input.InitiatorUserID)
	if err != nil {
		err = uc.classify(ctx, err)
		uc.reportFailure(ctx, req, err)
		return nil, err
	}

	if uc.observer != nil {
		uc.observer.TransferCompleted(req.Channel, req.Amount, uc.clock.Now().Sub(start))
	}

	zerolog.Ctx(ctx).Info().
		Str("tracking_code", result.TrackingCode).
		Str("transaction_id", result.Transaction.ID).
		Str("channel", req.Channel.String()).
		Str("amount", req.Amount.StringFixed(domain.MinorUnitDigits)).
		Msg("transfer completed")

	return result, nil
}

func (uc *TransferUseCase) transfer(ctx context.Context, req domain.TransferRequest, initiator string) (*TransferResult, error) {
	// 0. Validate before touching storage
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 1. Resolve references; card numbers and IBANs never change so no lock is needed yet
	sender, receiver, err := uc.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	if sender.ID == receiver.ID {
		return nil, domain.ErrSameAccount
	}

	if initiator != "" && sender.UserID != initiator {
		return nil, domain.ErrNotAccountOwner
	}

	var result *TransferResult
	operation := func() error {
		r, err := uc.execute(ctx, req, sender.ID, receiver.ID)
		if err != nil {
			return err
		}
		result = r
		return nil
	}

	if uc.retrier != nil {
		err = uc.retrier.Retry(ctx, operation)
	} else {
		err = operation()
	}
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (uc *TransferUseCase) resolve(ctx context.Context, req domain.TransferRequest) (*domain.Account, *domain.Account, error) {
	var (
		sender, receiver *domain.Account
		err              error
	)

	if req.Channel.IsInterbank() {
		sender, err = uc.accountRepo.GetByID(ctx, req.SenderRef)
		if err != nil {
			return nil, nil, err
		}
		receiver, err = uc.accountRepo.GetByIBAN(ctx, req.ReceiverRef)
		if err != nil {
			return nil, nil, err
		}
		return sender, receiver, nil
	}

	sender, err = uc.accountRepo.GetByCardNumber(ctx, req.SenderRef)
	if err != nil {
		return nil, nil, err
	}
	receiver, err = uc.accountRepo.GetByCardNumber(ctx, req.ReceiverRef)
	if err != nil {
		return nil, nil, err
	}

	return sender, receiver, nil
}

// execute runs one atomic unit.
func (uc *TransferUseCase) execute(ctx context.Context, req domain.TransferRequest, senderID, receiverID string) (*TransferResult, error) {
	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	// 2. Sort account IDs (DEADLOCK PREVENTION)
	accountIDs := []string{senderID, receiverID}
	sort.Strings(accountIDs)

	// 3. Begin transaction
	tx, err := uc.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	// 4. Lock accounts in sorted order
	accounts, err := uc.accountRepo.GetByIDsForUpdate(ctx, tx, accountIDs)
	if err != nil {
		return nil, err
	}

	if len(accounts) != len(accountIDs) {
		return nil, domain.ErrAccountNotFound
	}

	var sender, receiver *domain.Account
	for _, a := range accounts {
		switch a.ID {
		case senderID:
			sender = a
		case receiverID:
			receiver = a
		}
	}
	if sender == nil || receiver == nil {
		return nil, domain.ErrAccountNotFound
	}

	// Storage keeps microseconds; records must read back identical.
	now := uc.clock.Now().UTC().Truncate(time.Microsecond)

	// 5. Limit gate
	decision, err := uc.limits.Evaluate(sender, req.Channel, req.Amount, now)
	if err != nil {
		return nil, uc.keepReset(ctx, tx, sender, decision, now, err)
	}

	// 6. Balance check on the locked row
	if err := sender.ValidateDebit(req.Amount); err != nil {
		return nil, uc.keepReset(ctx, tx, sender, decision, now, err)
	}

	if decision.Gated || decision.Reset {
		if err := uc.limits.Persist(ctx, tx, sender, req.Channel, decision.Consumed, now); err != nil {
			return nil, err
		}
	}

	// 7. Move the money
	senderBalance, err := uc.accountRepo.ApplyDelta(ctx, tx, sender.ID, req.Amount.Neg(), now)
	if err != nil {
		return nil, err
	}

	if _, err := uc.accountRepo.ApplyDelta(ctx, tx, receiver.ID, req.Amount, now); err != nil {
		return nil, err
	}

	// 8. Append the ledger record under a fresh tracking code
	record := &domain.Transaction{
		ID:                uc.idGen.Generate(),
		SenderAccountID:   sender.ID,
		ReceiverAccountID: receiver.ID,
		Amount:            req.Amount,
		Channel:           req.Channel,
		CreatedAt:         now,
	}

	if err := uc.appendRecord(ctx, tx, record); err != nil {
		return nil, err
	}

	// 9. Outbox event in the same unit
	if uc.outboxRepo != nil {
		event := domain.NewTransferCompletedEvent(uc.idGen.Generate(), record)
		if err := uc.outboxRepo.Create(ctx, tx, event); err != nil {
			return nil, err
		}
	}

	// 10. Commit transaction
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return &TransferResult{
		TrackingCode:     record.TrackingCode,
		NewSenderBalance: senderBalance,
		Transaction:      record,
	}, nil
}

// keepReset commits a pending calendar-day reset before returning cause.
// A rejected transfer never mutates balances or the ledger.
func (uc *TransferUseCase) keepReset(ctx context.Context, tx Transaction, sender *domain.Account, decision LimitDecision, now time.Time, cause error) error {
	if !decision.Reset {
		return cause
	}

	if err := uc.limits.Persist(ctx, tx, sender, decision.Channel, decision.RolledOver, now); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	return cause
}

func (uc *TransferUseCase) appendRecord(ctx context.Context, tx Transaction, record *domain.Transaction) error {
	for attempt := 1; attempt <= MaxTrackingCodeAttempts; attempt++ {
		code, err := uc.codeGen.Generate()
		if err != nil {
			return err
		}
		record.TrackingCode = code

		err = uc.transactionRepo.Create(ctx, tx, record)
		if err == nil {
			return nil
		}

		if !errors.Is(err, domain.ErrDuplicateTrackingCode) {
			return err
		}

		if uc.observer != nil {
			uc.observer.TrackingCodeCollision()
		}

		zerolog.Ctx(ctx).Warn().
			Int("attempt", attempt).
			Msg("tracking code collision, regenerating")
	}

	return domain.ErrTransactionAborted
}

// classify maps err onto the engine error kinds.
func (uc *TransferUseCase) classify(ctx context.Context, err error) error {
	if domain.IsKnownError(err) {
		return err
	}

	// The caller gave up: report that, everything was rolled back.
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}

	// Only the unit timeout can have expired.
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ErrTransactionAborted
	}

	return &domain.StorageError{Op: "transfer", Err: err}
}

func (uc *TransferUseCase) reportFailure(ctx context.Context, req domain.TransferRequest, err error) {
	kind := domain.Kind(err)

	if uc.observer != nil {
		uc.observer.TransferFailed(req.Channel, kind)
	}

	event := zerolog.Ctx(ctx).Info()
	var storageErr *domain.StorageError
	if errors.As(err, &storageErr) {
		event = zerolog.Ctx(ctx).Error().Str("detail", storageErr.Detail())
	}

	event.Str("channel", req.Channel.String()).
		Str("kind", kind).
		Err(err).
		Msg("transfer rejected")
}
