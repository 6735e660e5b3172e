package persistent

import "gorm.io/gorm"

// TxManager runs a function inside a single database transaction. Every
// read-modify-write sequence in the usecases goes through it so checks and
// writes are atomic with respect to concurrent handlers.
type TxManager interface {
	Transaction(fn func(tx *gorm.DB) error) error
}

type gormTxManager struct {
	db *gorm.DB
}

func NewTxManager(db *gorm.DB) TxManager {
	return &gormTxManager{db: db}
}

func (m *gormTxManager) Transaction(fn func(tx *gorm.DB) error) error {
	return m.db.Transaction(fn)
}
