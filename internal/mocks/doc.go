// Package mocks provides shared test doubles.
//
// MockUserStore and MockInterestStore are in-memory, concurrency-safe
// implementations of the store interfaces that enforce the same uniqueness
// rules as the database schema. TestifyMockUserStore is a testify/mock
// double for tests that need to script individual store calls.
//
//	users := mocks.NewMockUserStore()
//	interests := mocks.NewMockInterestStore(users, domain.Interest{ID: 1, Name: "art"})
//	svc := service.NewProfileService(users, interests, &mocks.MockTransactor{}, authz.NewGuard(), nil)
package mocks
