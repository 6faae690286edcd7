package mocks

import (
	"context"

	"signdesk/internal/model"
	"signdesk/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockLinkService struct {
	mock.Mock
}

func (m *MockLinkService) Issue(ctx context.Context, actor model.Actor, documentID, recipient string) (*service.IssuedLink, error) {
	args := m.Called(ctx, actor, documentID, recipient)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.IssuedLink), args.Error(1)
}

func (m *MockLinkService) Resolve(ctx context.Context, token string) (*model.Document, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Document), args.Error(1)
}

func (m *MockLinkService) View(ctx context.Context, token string) (*service.PublicDocument, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.PublicDocument), args.Error(1)
}
