package interfaces

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextData(t *testing.T) {
	ctx := &ApplicationContext[any]{Header: http.Header{}}
	ctx.Header.Set("Authorization", "Bearer x")

	assert.Equal(t, "Bearer x", *ctx.GetHeader("Authorization"))
	assert.Nil(t, ctx.GetHeader("X-Missing"))

	ctx.SetContextData("OperatorID", "op-1")
	ctx.SetContextData("Count", 3)
	assert.Equal(t, "op-1", ctx.GetStringContextData("OperatorID"))
	assert.Equal(t, "", ctx.GetStringContextData("Count"))
	assert.Equal(t, 3, ctx.GetContextData("Count"))
}
