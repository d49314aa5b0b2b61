package services

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/contractgen/contractgen/pkg/models"
)

const (
	contractsTable = "contracts"
	usersTable     = "users"
)

// contractColumns lists the contracts columns read by every lookup, in scan order.
var contractColumns = []string{
	"id", "code", "abi", "bytecode", "owner_address",
	"chain_id", "constructor_args", "created_at", "user_id",
}

// userColumns is the user projection joined into contract listings, in scan order.
var userColumns = []string{"id", "name", "email"}

// ContractService provides read-only access to persisted contracts.
type ContractService struct {
	drv dialect.Driver
}

// NewContractService creates a new ContractService.
func NewContractService(drv dialect.Driver) *ContractService {
	if drv == nil {
		panic("NewContractService: driver must not be nil")
	}
	return &ContractService{drv: drv}
}

// LatestByOwner returns the most recently created contract for ownerAddress.
// Returns ErrNotFound when the owner has no contracts.
func (s *ContractService) LatestByOwner(httpCtx context.Context, ownerAddress string) (*models.Contract, error) {
	if ownerAddress == "" {
		return nil, NewValidationError("ownerAddress", "owner address is required")
	}

	ctx, cancel := context.WithTimeout(httpCtx, 5*time.Second)
	defer cancel()

	t := entsql.Table(contractsTable)
	query, args := entsql.Dialect(dialect.Postgres).
		Select(qualified(t, contractColumns)...).
		From(t).
		Where(entsql.EQ(t.C("owner_address"), ownerAddress)).
		OrderBy(entsql.Desc(t.C("created_at"))).
		Limit(1).
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("failed to query contract: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to read contract: %w", err)
		}
		return nil, ErrNotFound
	}

	var sc scannedContract
	if err := rows.Scan(sc.targets()...); err != nil {
		return nil, fmt.Errorf("failed to scan contract: %w", err)
	}
	return sc.model(), nil
}

// ListWithUsers returns every contract with its owning user's id, name and
// email. User is nil for contracts without a user.
func (s *ContractService) ListWithUsers(httpCtx context.Context) ([]*models.ContractWithUser, error) {
	ctx, cancel := context.WithTimeout(httpCtx, 5*time.Second)
	defer cancel()

	c := entsql.Table(contractsTable)
	u := entsql.Table(usersTable)
	columns := append(qualified(c, contractColumns), qualified(u, userColumns)...)

	query, args := entsql.Dialect(dialect.Postgres).
		Select(columns...).
		From(c).
		LeftJoin(u).
		On(c.C("user_id"), u.C("id")).
		OrderBy(entsql.Desc(c.C("created_at"))).
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("failed to query contracts: %w", err)
	}
	defer rows.Close()

	result := []*models.ContractWithUser{}
	for rows.Next() {
		var (
			sc                  scannedContract
			userID, name, email stdsql.NullString
		)
		targets := append(sc.targets(), &userID, &name, &email)
		if err := rows.Scan(targets...); err != nil {
			return nil, fmt.Errorf("failed to scan contract: %w", err)
		}

		item := &models.ContractWithUser{Contract: *sc.model()}
		if userID.Valid {
			item.User = &models.UserSummary{
				ID:    userID.String,
				Name:  nullableString(name),
				Email: nullableString(email),
			}
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read contracts: %w", err)
	}

	return result, nil
}

// scannedContract holds the nullable scan targets for one contracts row.
type scannedContract struct {
	id, code, bytecode, owner string
	abi, constructorArgs      []byte
	chainID                   stdsql.NullInt64
	createdAt                 time.Time
	userID                    stdsql.NullString
}

func (sc *scannedContract) targets() []any {
	return []any{
		&sc.id, &sc.code, &sc.abi, &sc.bytecode, &sc.owner,
		&sc.chainID, &sc.constructorArgs, &sc.createdAt, &sc.userID,
	}
}

func (sc *scannedContract) model() *models.Contract {
	m := &models.Contract{
		ID:              sc.id,
		Code:            sc.code,
		ABI:             sc.abi,
		Bytecode:        sc.bytecode,
		OwnerAddress:    sc.owner,
		ConstructorArgs: sc.constructorArgs,
		CreatedAt:       sc.createdAt,
		UserID:          nullableString(sc.userID),
	}
	if sc.chainID.Valid {
		chainID := sc.chainID.Int64
		m.ChainID = &chainID
	}
	return m
}

func qualified(t *entsql.SelectTable, columns []string) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		out[i] = t.C(col)
	}
	return out
}

func nullableString(ns stdsql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
