package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ErrorTestSuite struct {
	suite.Suite
}

func TestErrorSuite(t *testing.T) {
	suite.Run(t, new(ErrorTestSuite))
}

func (suite *ErrorTestSuite) TestNewError() {
	err := New(ErrCodeInvalidParameter, "invalid parameter")
	suite.Equal(ErrCodeInvalidParameter, err.Code)
	suite.Equal("invalid parameter", err.Message)
	suite.Nil(err.Cause)
	suite.Equal("[100] invalid parameter", err.Error())
}

func (suite *ErrorTestSuite) TestNewf() {
	err := Newf(ErrCodeInvalidPeriod, "period %d out of range", 0)
	suite.Equal("period 0 out of range", err.Message)
}

func (suite *ErrorTestSuite) TestWrapIncludesCause() {
	cause := errors.New("disk full")
	err := Wrap(ErrCodeResultWriteFailed, "failed to export trades", cause)
	suite.Equal("[203] failed to export trades: disk full", err.Error())
	suite.Equal(cause, err.Unwrap())
	suite.True(Is(err, cause))
}

func (suite *ErrorTestSuite) TestWrapf() {
	cause := errors.New("no such file")
	err := Wrapf(ErrCodeStrategyLoadFailed, cause, "failed to read %s", "rsi.json")
	suite.Equal("failed to read rsi.json", err.Message)
	suite.Equal(cause, err.Cause)
}

func (suite *ErrorTestSuite) TestGetCodeThroughFmtWrapping() {
	inner := New(ErrCodeUnresolvableNode, "no rule for node")
	outer := fmt.Errorf("compile: %w", inner)

	suite.Equal(ErrCodeUnresolvableNode, GetCode(outer))
	suite.True(HasCode(outer, ErrCodeUnresolvableNode))
	suite.False(HasCode(outer, ErrCodeCodegenFailed))
}

func (suite *ErrorTestSuite) TestGetCodeOfPlainError() {
	suite.Equal(ErrCodeUnknown, GetCode(errors.New("plain")))
	suite.Equal(ErrCodeUnknown, GetCode(nil))
}

func (suite *ErrorTestSuite) TestAs() {
	var target *Error

	err := fmt.Errorf("wrapped: %w", New(ErrCodeBacktestCancelled, "cancelled"))
	suite.True(As(err, &target))
	suite.Equal(ErrCodeBacktestCancelled, target.Code)
}
