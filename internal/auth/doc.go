// Package auth provides JWT token generation and validation for the
// Benchline station API.
//
// Tokens are HS256-signed with the station secret and carry a role claim
// used by the API middleware for authorisation. The station keeps no
// session state: a token is valid until it expires.
package auth
