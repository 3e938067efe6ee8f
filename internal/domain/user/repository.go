package user

import "context"

// Repository persists users. Getters return (nil, nil) when nothing matches.
type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uint) (*User, error)
	GetBySID(ctx context.Context, sid string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*User, error)
	Update(ctx context.Context, user *User) error
	List(ctx context.Context, filter ListFilter) ([]*User, int64, error)
}

type ListFilter struct {
	Page     int
	PageSize int
	Role     string
	Tier     string
	Status   string
	// Search matches email or display name.
	Search string
}

type PreferencesRepository interface {
	// Get returns nil when the user has no stored preferences.
	Get(ctx context.Context, userID uint) (*Preferences, error)
	Upsert(ctx context.Context, prefs *Preferences) error
}
