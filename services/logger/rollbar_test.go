package logsvc

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"

	"github.com/rollbar/rollbar-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/minicrm/core"
	"github.com/trezcool/minicrm/core/user"
)

func TestRollbarLogger_prepare(t *testing.T) {
	var buf bytes.Buffer
	logger := NewRollbarLogger(log.New(&buf, "", 0), &core.Config{})
	ann := &user.Principal{ID: 4, Name: "Ann", Email: "ann@test.cd", Role: user.RoleAdmin}
	bob := &user.Principal{ID: 5, Name: "Bob", Email: "bob@test.cd"}
	err := errors.New("boom")

	t.Run("principals become a person context", func(t *testing.T) {
		args := logger.prepare("failed", []interface{}{err, ann, bob})
		require.Len(t, args, 3)
		assert.Equal(t, "failed", args[0])
		assert.Equal(t, err, args[1])
		_, ok := args[2].(context.Context)
		assert.True(t, ok, "got %T", args[2])
	})

	t.Run("no principal", func(t *testing.T) {
		args := logger.prepare("failed", []interface{}{err, (*user.Principal)(nil)})
		assert.Equal(t, []interface{}{"failed", err}, args)
	})

	t.Run("person", func(t *testing.T) {
		assert.Equal(t, &rollbar.Person{Id: "4", Username: "Ann", Email: "ann@test.cd"}, person(ann))
	})

	logger.Info("hello", ann)
	assert.Contains(t, buf.String(), "INFO: hello")
	assert.Contains(t, buf.String(), "user: 4 <ann@test.cd>")
}
