package repository

import "context"

// Store groups the repositories over one connection or transaction.
type Store interface {
	Users() UserRepository
	Articles() ArticleRepository
	Publishers() PublisherRepository
	Newsletters() NewsletterRepository
	Subscriptions() SubscriptionRepository
	// WithinTx runs fn with a transaction-scoped Store. The transaction is
	// committed when fn returns nil and rolled back otherwise.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}
