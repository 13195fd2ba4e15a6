package iss_test

import (
	"github.com/smoynes/forge/internal/iss"
)

// mockSimAPI is a hand-written stand-in for a github.com/golang/mock-generated SimAPI mock: a
// scripted queue of StepResults plus call-count bookkeeping, used in place of a real simulator
// process in tests.
type mockSimAPI struct {
	steps []iss.StepResult
	err   error

	stepCalls                 int
	writeRegisterCalls        int
	writePhysicalMemoryCalls  int
	enterSpeculativeModeCalls int
	leaveSpeculativeModeCalls int
	lastWrittenRegister       string
	lastWrittenMemoryBank     string
}

func (m *mockSimAPI) Step(threadID uint32) (iss.StepResult, error) {
	if m.err != nil {
		return iss.StepResult{}, m.err
	}

	if m.stepCalls >= len(m.steps) {
		return iss.StepResult{}, nil
	}

	result := m.steps[m.stepCalls]
	m.stepCalls++

	return result, nil
}

func (m *mockSimAPI) WriteRegister(threadID uint32, name string, value, mask uint64) error {
	m.writeRegisterCalls++
	m.lastWrittenRegister = name

	return nil
}

func (m *mockSimAPI) WritePhysicalMemory(threadID uint32, bank string, pa uint64, data []byte) error {
	m.writePhysicalMemoryCalls++
	m.lastWrittenMemoryBank = bank

	return nil
}

func (m *mockSimAPI) EnterSpeculativeMode(threadID uint32) error {
	m.enterSpeculativeModeCalls++
	return nil
}

func (m *mockSimAPI) LeaveSpeculativeMode(threadID uint32) error {
	m.leaveSpeculativeModeCalls++
	return nil
}

// mockExceptionHandler records the exception events it's handed.
type mockExceptionHandler struct {
	handled []iss.ExceptionEvent
	err     error
}

func (m *mockExceptionHandler) HandleException(ev iss.ExceptionEvent) error {
	m.handled = append(m.handled, ev)
	return m.err
}
