package postgres

import (
	"database/sql"
	"errors"
	"strings"

	"library-circulation-backend/internal/domain"

	"github.com/lib/pq"
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

var uniqueFields = map[string]string{
	"books_isbn_key":                "isbn",
	"members_email_key":             "email",
	"members_membership_number_key": "membership_number",
}

// foreignKeys names the parent entity of every foreign key constraint.
var foreignKeys = map[string]string{
	"transactions_book_id_fkey":   "book",
	"transactions_member_id_fkey": "member",
	"fines_member_id_fkey":        "member",
	"fines_transaction_id_fkey":   "transaction",
}

// mapError converts driver errors into domain errors. entity and id describe
// the row the statement targeted and are only used for NotFound.
func mapError(err error, entity string, id int32) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound(entity, id)
	}

	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch string(pqErr.Code) {
	case pqUniqueViolation:
		field, ok := uniqueFields[pqErr.Constraint]
		if !ok {
			field = strings.TrimSuffix(strings.TrimPrefix(pqErr.Constraint, entity+"s_"), "_key")
		}
		return &domain.Error{Kind: domain.KindConflict, Message: field + " already exists", Err: err}
	case pqForeignKeyViolation:
		// A violation of the entity's own constraint means the row points at a
		// missing parent; any other means the row is still referenced.
		if parent, ok := foreignKeys[pqErr.Constraint]; ok && strings.HasPrefix(pqErr.Constraint, entity+"s_") {
			return &domain.Error{Kind: domain.KindConflict, Message: parent + " does not exist", Err: err}
		}
		return &domain.Error{Kind: domain.KindConflict, Message: entity + " is referenced by other records", Err: err}
	case pqCheckViolation:
		return &domain.Error{Kind: domain.KindInvalidOperation, Message: "constraint " + pqErr.Constraint + " violated", Err: err}
	}
	return err
}
