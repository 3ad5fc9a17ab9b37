package ledger

import "strings"

// BroadcastError es una falla upstream del relay con una descripción corta
// para humanos. Raw conserva el mensaje original.
type BroadcastError struct {
	Raw         string
	Description string
}

func (e *BroadcastError) Error() string { return e.Description }

// upstreamMessages mapea fragmentos de mensajes de error conocidos del nodo
// a descripciones cortas. Cuando nada matchea se devuelve el mensaje crudo.
var upstreamMessages = []struct {
	contains string
	describe string
}{
	{"missing required posting authority", "the platform posting authority is not registered for this account"},
	{"missing required active authority", "this operation requires an active authority the platform does not hold"},
	{"missing required owner authority", "this operation requires the owner authority the platform does not hold"},
	{"Duplicate transaction check failed", "this transaction was already submitted"},
	{"does not have sufficient funds", "insufficient funds for this operation"},
	{"Voting weight is too small", "voting weight is too small, please accumulate more voting power"},
	{"You have already voted in a similar way", "you have already voted in a similar way"},
	{"Can only vote once every 3 seconds", "you can only vote once every 3 seconds"},
	{"You may only post once every 5 minutes", "you may only post once every 5 minutes"},
	{"You may only comment once every 20 seconds", "you may only comment once every 20 seconds"},
	{"Comment is deleted", "the comment was deleted and can no longer be interacted with"},
	{"The comment is archived", "the comment is archived and can no longer be edited or voted on"},
	{"transaction expiration exception", "the transaction expired before being included in a block"},
}

// describeUpstream traduce un mensaje upstream conocido; si no hay mapeo,
// devuelve el mensaje tal cual.
func describeUpstream(raw string) string {
	for _, m := range upstreamMessages {
		if strings.Contains(raw, m.contains) {
			return m.describe
		}
	}
	return raw
}
