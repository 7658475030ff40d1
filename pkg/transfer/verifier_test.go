package transfer

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestVerifyRowCount(t *testing.T) {
	ctx := context.Background()
	sink := newSink(t)
	db := sqlx.NewDb(sink.DB(), sink.DriverName())

	_, err := db.ExecContext(ctx, `CREATE TABLE plants (a INTEGER)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO plants VALUES (1), (2)`)
	require.NoError(t, err)

	v := NewVerifier(db, zaptest.NewLogger(t)).WithTimeout(5 * time.Second)

	ok, count, err := v.VerifyRowCount(ctx, "plants", 2)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.EqualValues(t, 2, count)

	ok, count, err = v.VerifyRowCount(ctx, "plants", 3)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.EqualValues(t, 2, count)

	_, _, err = v.VerifyRowCount(ctx, "missing", 0)
	assert.Error(t, err)
}
