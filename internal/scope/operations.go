// Package scope decide si un lote de operaciones puede reenviarse bajo una
// credencial: pertenencia al scope efectivo y titularidad de los campos de
// actor. Recién cuando el lote pasa entero se deja seguir al broadcast.
package scope

// DefaultOperations es el scope que recibe una app sin operaciones
// autorizadas configuradas: el conjunto social básico.
var DefaultOperations = []string{
	"vote",
	"comment",
	"comment_options",
	"delete_comment",
	"custom_json",
	"claim_reward_balance",
}

// actorFields mapea cada tipo de operación al campo de su body que nombra
// a la cuenta actuante. Ese campo tiene que coincidir con la identidad
// autenticada: firmar en nombre de terceros no está permitido.
var actorFields = map[string]string{
	"vote":                 "voter",
	"comment":              "author",
	"comment_options":      "author",
	"delete_comment":       "author",
	"claim_reward_balance": "account",
	"account_update2":      "account",
	"transfer":             "from",
}

// arrayActorFields: operaciones cuyo actor viene en listas de cuentas; cada
// entrada de cada lista tiene que ser la identidad autenticada.
var arrayActorFields = map[string][]string{
	"custom_json": {"required_posting_auths", "required_auths"},
}
