// Package domain contains the core entities of the users service (User,
// Interest, Profile), their validation rules, the paging contract for list and
// search, the profile fingerprint used for conditional reads, and the error
// taxonomy shared by every layer.
package domain
