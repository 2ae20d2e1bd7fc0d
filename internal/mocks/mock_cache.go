package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"taman-digital/internal/domain"
)

// MockCache is a mock type for the snapshot.Cache type
type MockCache struct {
	mock.Mock
}

type MockCache_Expecter struct {
	mock *mock.Mock
}

func (_m *MockCache) EXPECT() *MockCache_Expecter {
	return &MockCache_Expecter{mock: &_m.Mock}
}

// Save provides a mock function with given fields: ctx, scope, key, draft
func (_m *MockCache) Save(ctx context.Context, scope string, key string, draft domain.Draft) (*domain.DraftSnapshot, error) {
	ret := _m.Called(ctx, scope, key, draft)

	if len(ret) == 0 {
		panic("no return value specified for Save")
	}

	var r0 *domain.DraftSnapshot
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.DraftSnapshot)
	}
	return r0, ret.Error(1)
}

type MockCache_Save_Call struct {
	*mock.Call
}

func (_e *MockCache_Expecter) Save(ctx interface{}, scope interface{}, key interface{}, draft interface{}) *MockCache_Save_Call {
	return &MockCache_Save_Call{Call: _e.mock.On("Save", ctx, scope, key, draft)}
}

func (_c *MockCache_Save_Call) Return(_a0 *domain.DraftSnapshot, _a1 error) *MockCache_Save_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

// Get provides a mock function with given fields: ctx, scope, key
func (_m *MockCache) Get(ctx context.Context, scope string, key string) (*domain.DraftSnapshot, error) {
	ret := _m.Called(ctx, scope, key)

	if len(ret) == 0 {
		panic("no return value specified for Get")
	}

	var r0 *domain.DraftSnapshot
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*domain.DraftSnapshot)
	}
	return r0, ret.Error(1)
}

type MockCache_Get_Call struct {
	*mock.Call
}

func (_e *MockCache_Expecter) Get(ctx interface{}, scope interface{}, key interface{}) *MockCache_Get_Call {
	return &MockCache_Get_Call{Call: _e.mock.On("Get", ctx, scope, key)}
}

func (_c *MockCache_Get_Call) Return(_a0 *domain.DraftSnapshot, _a1 error) *MockCache_Get_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

// History provides a mock function with given fields: ctx, scope, key
func (_m *MockCache) History(ctx context.Context, scope string, key string) ([]domain.DraftSnapshot, error) {
	ret := _m.Called(ctx, scope, key)

	if len(ret) == 0 {
		panic("no return value specified for History")
	}

	var r0 []domain.DraftSnapshot
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]domain.DraftSnapshot)
	}
	return r0, ret.Error(1)
}

type MockCache_History_Call struct {
	*mock.Call
}

func (_e *MockCache_Expecter) History(ctx interface{}, scope interface{}, key interface{}) *MockCache_History_Call {
	return &MockCache_History_Call{Call: _e.mock.On("History", ctx, scope, key)}
}

func (_c *MockCache_History_Call) Return(_a0 []domain.DraftSnapshot, _a1 error) *MockCache_History_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

// Clear provides a mock function with given fields: ctx, scope, key
func (_m *MockCache) Clear(ctx context.Context, scope string, key string) error {
	ret := _m.Called(ctx, scope, key)

	if len(ret) == 0 {
		panic("no return value specified for Clear")
	}
	return ret.Error(0)
}

type MockCache_Clear_Call struct {
	*mock.Call
}

func (_e *MockCache_Expecter) Clear(ctx interface{}, scope interface{}, key interface{}) *MockCache_Clear_Call {
	return &MockCache_Clear_Call{Call: _e.mock.On("Clear", ctx, scope, key)}
}

func (_c *MockCache_Clear_Call) Return(_a0 error) *MockCache_Clear_Call {
	_c.Call.Return(_a0)
	return _c
}

// ClearScope provides a mock function with given fields: ctx, scope
func (_m *MockCache) ClearScope(ctx context.Context, scope string) error {
	ret := _m.Called(ctx, scope)

	if len(ret) == 0 {
		panic("no return value specified for ClearScope")
	}
	return ret.Error(0)
}

type MockCache_ClearScope_Call struct {
	*mock.Call
}

func (_e *MockCache_Expecter) ClearScope(ctx interface{}, scope interface{}) *MockCache_ClearScope_Call {
	return &MockCache_ClearScope_Call{Call: _e.mock.On("ClearScope", ctx, scope)}
}

func (_c *MockCache_ClearScope_Call) Return(_a0 error) *MockCache_ClearScope_Call {
	_c.Call.Return(_a0)
	return _c
}

// NewMockCache creates a new instance of MockCache. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
func NewMockCache(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCache {
	m := &MockCache{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
