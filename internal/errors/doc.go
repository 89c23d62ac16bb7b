// Package errors provides coded errors for the NPC world API.
//
// Domain packages return *Error values carrying a Code; the HTTP layer maps
// the code to a status with Code.HTTPStatus and reports Message to the client.
//
//	npc, err := roster.Get(id)
//	if errors.IsNotFound(err) {
//		// 404
//	}
package errors
