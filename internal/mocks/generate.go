// Package mocks provides gomock implementations of the story web ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	api := mocks.NewMockStoryAPI(ctrl)
//	api.EXPECT().Plans(gomock.Any()).Return(plans, nil)
package mocks

// Generate mock for the StoryAPI interface from internal/ports.
// Methods: Login, AdminLogin, ExchangeOAuth, Logout, Plans, Cart, SelectPlan, AdminUsers
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=storyapi_mock.go github.com/target/storyweb/internal/ports StoryAPI

// Generate mock for the BrowserScope interface from internal/ports.
// Methods: Redirect, Toast, ClearSession
//go:generate go run go.uber.org/mock/mockgen@v0.6.0 -package=mocks -destination=browser_mock.go github.com/target/storyweb/internal/ports BrowserScope
