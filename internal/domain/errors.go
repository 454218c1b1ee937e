package domain

import (
	"errors"
	"fmt"
)

// Kind clasifica los errores de dominio. El handler HTTP mapea Kind a un
// status code; el par (Code, Message) viaja siempre intacto hasta el cliente.
type Kind int

const (
	KindAuthorization Kind = iota + 1
	KindValidation
	KindStateTransition
	KindNotFound
	KindSystem
)

// Error es el error de dominio con código máquina estable (ERR-AUTH-001,
// ERR-VAL-003, ERR-WF-001, ...). El código nunca va embebido en el mensaje
// humano: son campos separados.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error // causa subyacente (solo para KindSystem)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap expone la causa para errors.Is / errors.As.
func (e *Error) Unwrap() error { return e.Err }

// ── Constructores por taxonomía ───────────────────────────────────────────────

// Authz construye un AuthorizationError (ERR-AUTH-*). Nunca se reintenta.
func Authz(code, message string) *Error {
	return &Error{Kind: KindAuthorization, Code: code, Message: message}
}

// Invalid construye un ValidationError. La primera regla que falla gana:
// los servicios retornan en la primera violación, sin agregación.
func Invalid(code, message string) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: message}
}

// Invalidf variante con formato.
func Invalidf(code, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Transition construye un StateTransitionError identificando entidad,
// estado actual y estado solicitado. Nunca se ignora en silencio.
func Transition(code, entity, from, to string) *Error {
	return &Error{
		Kind:    KindStateTransition,
		Code:    code,
		Message: fmt.Sprintf("transición de estado no permitida para %s: %s → %s", entity, from, to),
	}
}

// NotFound construye un NotFoundError. Un recurso de otro tenant responde
// exactamente igual que uno inexistente (no filtra existencia cruzada).
func NotFound(code, resource string) *Error {
	return &Error{Kind: KindNotFound, Code: code, Message: resource + " no encontrado"}
}

// System envuelve un fallo de persistencia/infraestructura conservando el
// mensaje subyacente. El caller puede reintentar la operación completa.
func System(code, message string, err error) *Error {
	return &Error{Kind: KindSystem, Code: code, Message: message, Err: err}
}

// ── Códigos compartidos ───────────────────────────────────────────────────────

const (
	CodeNoTenant     = "ERR-AUTH-001" // el usuario no tiene tenant en el contexto
	CodeRole         = "ERR-AUTH-002" // no posee ninguno de los roles requeridos
	CodeNotOwner     = "ERR-AUTH-003" // no es creador/aprobador/PM del recurso
	CodeSelfTarget   = "ERR-AUTH-004" // role_change/disable sobre uno mismo
	CodeLastAdmin    = "ERR-AUTH-005" // dejaría al tenant sin tenant_admin
	CodeITAdminGrant = "ERR-AUTH-006" // solo it_admin concede/revoca it_admin
	CodePersistence  = "ERR-SYS-001"  // fallo de la capa de persistencia
	CodeAuditWrite   = "ERR-SYS-002"  // fallo al escribir el audit log
)

// ── Helpers ───────────────────────────────────────────────────────────────────

// AsError extrae *Error de una cadena de wrapping; (nil, false) si no hay.
func AsError(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// IsKind reporta si err es un *Error del Kind dado.
func IsKind(err error, k Kind) bool {
	de, ok := AsError(err)
	return ok && de.Kind == k
}

// Wrap garantiza que todo error que cruce la frontera de servicio sea un
// *Error tipado: lo que no lo sea se envuelve como fallo de sistema.
func Wrap(err error) *Error {
	if err == nil {
		return nil
	}
	if de, ok := AsError(err); ok {
		return de
	}
	return System(CodePersistence, "fallo de infraestructura", err)
}
