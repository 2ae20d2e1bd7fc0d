package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"taman-digital/internal/service"
)

// MockTextGenerator is a mock type for the service.TextGenerator type
type MockTextGenerator struct {
	mock.Mock
}

type MockTextGenerator_Expecter struct {
	mock *mock.Mock
}

func (_m *MockTextGenerator) EXPECT() *MockTextGenerator_Expecter {
	return &MockTextGenerator_Expecter{mock: &_m.Mock}
}

// Generate provides a mock function with given fields: ctx, task, text
func (_m *MockTextGenerator) Generate(ctx context.Context, task service.Task, text string) (string, error) {
	ret := _m.Called(ctx, task, text)

	if len(ret) == 0 {
		panic("no return value specified for Generate")
	}

	var r0 string
	var r1 error
	if rf, ok := ret.Get(0).(func(context.Context, service.Task, string) (string, error)); ok {
		return rf(ctx, task, text)
	}
	if rf, ok := ret.Get(0).(func(context.Context, service.Task, string) string); ok {
		r0 = rf(ctx, task, text)
	} else {
		r0 = ret.Get(0).(string)
	}

	if rf, ok := ret.Get(1).(func(context.Context, service.Task, string) error); ok {
		r1 = rf(ctx, task, text)
	} else {
		r1 = ret.Error(1)
	}

	return r0, r1
}

// MockTextGenerator_Generate_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'Generate'
type MockTextGenerator_Generate_Call struct {
	*mock.Call
}

// Generate is a helper method to define mock.On call
//   - ctx context.Context
//   - task service.Task
//   - text string
func (_e *MockTextGenerator_Expecter) Generate(ctx interface{}, task interface{}, text interface{}) *MockTextGenerator_Generate_Call {
	return &MockTextGenerator_Generate_Call{Call: _e.mock.On("Generate", ctx, task, text)}
}

func (_c *MockTextGenerator_Generate_Call) Run(run func(ctx context.Context, task service.Task, text string)) *MockTextGenerator_Generate_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run(args[0].(context.Context), args[1].(service.Task), args[2].(string))
	})
	return _c
}

func (_c *MockTextGenerator_Generate_Call) Return(_a0 string, _a1 error) *MockTextGenerator_Generate_Call {
	_c.Call.Return(_a0, _a1)
	return _c
}

func (_c *MockTextGenerator_Generate_Call) RunAndReturn(run func(context.Context, service.Task, string) (string, error)) *MockTextGenerator_Generate_Call {
	_c.Call.Return(run)
	return _c
}

// NewMockTextGenerator creates a new instance of MockTextGenerator. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockTextGenerator(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockTextGenerator {
	m := &MockTextGenerator{}
	m.Mock.Test(t)

	t.Cleanup(func() { m.AssertExpectations(t) })

	return m
}
