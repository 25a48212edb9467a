package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

const finishTimeout = 10 * time.Second

// TxRunner runs critical sections inside a multi-document transaction.
type TxRunner struct {
	client *mongo.Client
}

func NewTxRunner(db *DB) *TxRunner {
	return &TxRunner{client: db.Client}
}

func txOptions() *options.TransactionOptions {
	return options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority()).
		SetReadPreference(readpref.Primary())
}

// RunInTx starts a session and transaction, runs fn with a context bound
// to that session and commits if fn returns nil. On error or panic the
// transaction is aborted. The session is always ended. Commit and abort
// are detached from ctx cancellation so a dropped request still leaves
// the transaction in a terminal state. Conflicts are not retried.
func (r *TxRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer func() {
		endCtx, cancel := detached(ctx)
		defer cancel()
		sess.EndSession(endCtx)
	}()

	if err := sess.StartTransaction(txOptions()); err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}

	finished := false
	defer func() {
		if finished {
			return
		}
		abortCtx, cancel := detached(ctx)
		defer cancel()
		if err := sess.AbortTransaction(abortCtx); err != nil {
			slog.Warn("abort transaction failed", "error", err)
		}
	}()

	if err := fn(mongo.NewSessionContext(ctx, sess)); err != nil {
		return err
	}

	finished = true
	commitCtx, cancel := detached(ctx)
	defer cancel()
	if err := sess.CommitTransaction(commitCtx); err != nil {
		return translate(fmt.Errorf("commit transaction: %w", err))
	}
	return nil
}

func detached(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), finishTimeout)
}
