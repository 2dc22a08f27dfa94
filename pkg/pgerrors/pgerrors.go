package pgerrors

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/lib/pq"
)

// ErrTransient временная ошибка хранилища: операцию можно повторить целиком
var ErrTransient = errors.New("postgres: transient error")

// Коды ошибок PostgreSQL, после которых транзакцию можно повторить
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeLockNotAvailable     = "55P03"
	codeQueryCanceled        = "57014"
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeCheckViolation       = "23514"
	classConnectionException = "08"
	classTransactionRollback = "40"
)

// IsTransient определяет, что ошибка вызвана блокировкой, конфликтом сериализации,
// таймаутом или потерей соединения
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case codeSerializationFailure, codeDeadlockDetected, codeLockNotAvailable, codeQueryCanceled:
			return true
		}
		return pqErr.Code.Class() == classConnectionException
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// IsRolledBack сервер сам откатил транзакцию (класс 40: сериализация, дедлок)
// Только для таких ошибок COMMIT известно, что ничего не записано
func IsRolledBack(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Class() == classTransactionRollback
}

// IsUniqueViolation нарушение уникального индекса; constraint пустой - любой индекс
func IsUniqueViolation(err error, constraint string) bool {
	return hasCode(err, codeUniqueViolation, constraint)
}

// IsForeignKeyViolation нарушение внешнего ключа
func IsForeignKeyViolation(err error) bool {
	return hasCode(err, codeForeignKeyViolation, "")
}

// IsCheckViolation нарушение CHECK ограничения
func IsCheckViolation(err error) bool {
	return hasCode(err, codeCheckViolation, "")
}

func hasCode(err error, code pq.ErrorCode, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || pqErr.Code != code {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

// Wrap оборачивает ошибку драйвера в sentinel репозитория,
// добавляя ErrTransient для повторяемых ошибок
// Исходная ошибка сохраняется в цепочке, чтобы вызывающий мог проверить код
func Wrap(sentinel error, op string, err error) error {
	w := &wrappedError{
		msg:  sentinel.Error() + ": " + op + ": " + err.Error(),
		errs: []error{sentinel, err},
	}
	if IsTransient(err) {
		w.errs = append(w.errs, ErrTransient)
	}
	return w
}

type wrappedError struct {
	msg  string
	errs []error
}

func (e *wrappedError) Error() string {
	return e.msg
}

func (e *wrappedError) Unwrap() []error {
	return e.errs
}
