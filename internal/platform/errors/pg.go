package errors

import (
	"context"
	stderrs "errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// sqlstates the repos care about
const (
	stateUniqueViolation     = "23505"
	stateForeignKeyViolation = "23503"
	stateNotNullViolation    = "23502"
	stateCheckViolation      = "23514"
	stateStringTooLong       = "22001"
	stateInvalidText         = "22P02"
	stateSerialization       = "40001"
	stateDeadlock            = "40P01"
	stateLockNotAvailable    = "55P03"
	stateReadOnly            = "25006"
	stateCannotConnectNow    = "57P03"
)

func pgError(err error) (*pgconn.PgError, bool) {
	var pe *pgconn.PgError
	ok := stderrs.As(err, &pe)
	return pe, ok
}

// pgCode classifies a postgres error, anything unrecognised is ErrorCodeDB
func pgCode(pe *pgconn.PgError) ErrorCode {
	switch pe.Code {
	case stateUniqueViolation:
		return ErrorCodeDuplicateKey
	case stateNotNullViolation, stateCheckViolation:
		return ErrorCodeValidation
	case stateForeignKeyViolation, stateStringTooLong, stateInvalidText:
		return ErrorCodeInvalidArgument
	case stateReadOnly, stateCannotConnectNow:
		return ErrorCodeUnavailable
	}
	return ErrorCodeDB
}

// FromPostgres wraps a driver error under msg with the code its sqlstate implies
// nil stays nil, errors that are already ours keep their code
func FromPostgres(err error, msg string) error {
	if err == nil {
		return nil
	}
	if e, ok := As(err); ok {
		return Wrap(e, e.code, msg)
	}
	code := ErrorCodeDB
	if pe, ok := pgError(err); ok {
		code = pgCode(pe)
	}
	return Wrap(err, code, msg)
}

// FromPostgresWithField is FromPostgres that also names the offending column
// the column comes from the error, else from a constraint named table_column_check
func FromPostgresWithField(err error, msg string) error {
	out := FromPostgres(err, msg)
	pe, ok := pgError(err)
	if !ok {
		return out
	}
	if col := strings.TrimSpace(pe.ColumnName); col != "" {
		return WithField(out, col)
	}
	if col := constraintColumn(pe.TableName, pe.ConstraintName); col != "" {
		return WithField(out, col)
	}
	return out
}

func constraintColumn(table, constraint string) string {
	c := strings.TrimPrefix(constraint, table+"_")
	if c == constraint && table != "" {
		return ""
	}
	for _, suffix := range []string{"_check", "_key", "_fkey", "_not_null"} {
		if s, ok := strings.CutSuffix(c, suffix); ok && s != "" {
			return s
		}
	}
	return ""
}

// IsRetryable reports contention a rerun of the transaction can clear
// context cancellation is never retryable
func IsRetryable(err error) bool {
	if err == nil || stderrs.Is(err, context.Canceled) || stderrs.Is(err, context.DeadlineExceeded) {
		return false
	}
	if pe, ok := pgError(err); ok {
		switch pe.Code {
		case stateSerialization, stateDeadlock, stateLockNotAvailable:
			return true
		}
		return false
	}
	// pgx reports a commit that rolled back as text only
	return strings.Contains(strings.ToLower(Root(err).Error()), "commit unexpectedly resulted in rollback")
}
