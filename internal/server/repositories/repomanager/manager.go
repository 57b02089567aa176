package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/phoenixlocker/internal/dbx"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/repositories/totals"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/repositories/transactions"
	"github.com/dmitrijs2005/phoenixlocker/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Accounts(db dbx.DBTX) accounts.Repository
	Transactions(db dbx.DBTX) transactions.Repository
	Totals(db dbx.DBTX) totals.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
}
