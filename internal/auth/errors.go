// Package auth es el núcleo de confianza del servicio: verificación de
// firmas contra las autoridades del ledger, emisión de challenges cifrados
// y la compuerta única de autenticación que protege toda la API.
package auth

import "errors"

// Taxonomía de fallas de autenticación. Los handlers HTTP las mapean a
// status y a {error, error_description}; acá sólo se distinguen causas.
var (
	// ErrMalformedCredential: la credencial no parsea o no tiene la
	// clase esperada para la vía usada.
	ErrMalformedCredential = errors.New("auth: credencial malformada")

	// ErrSignatureInvalid: parsea bien, pero la firma no corresponde a
	// la clave custodial ni a ninguna autoridad registrada.
	ErrSignatureInvalid = errors.New("auth: firma inválida")

	// ErrExpired: la firma es válida pero la credencial venció.
	ErrExpired = errors.New("auth: credencial vencida")

	// ErrRevokedOrConsumed: revocación posterior a la emisión, o code ya
	// canjeado.
	ErrRevokedOrConsumed = errors.New("auth: credencial revocada o consumida")

	// ErrOwnership: la credencial es de otra identidad que la exigida.
	ErrOwnership = errors.New("auth: la credencial pertenece a otra identidad")

	// ErrLookupFailed: no se pudo consultar el directorio de cuentas;
	// distinto de "firma inválida" — acá no se sabe.
	ErrLookupFailed = errors.New("auth: no se pudo consultar el ledger")

	// ErrInvalidRole: se pidió un challenge para un rol inexistente.
	ErrInvalidRole = errors.New("auth: rol de autoridad desconocido")

	// ErrNoUsableKeys: la cuenta existe pero el rol pedido no tiene
	// ninguna clave parseable hacia la cual cifrar.
	ErrNoUsableKeys = errors.New("auth: el rol no tiene claves utilizables")

	// ErrUnknownClient: el client_id no corresponde a ninguna app.
	ErrUnknownClient = errors.New("auth: cliente desconocido")
)
