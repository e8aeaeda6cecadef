package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoffWithJitterBounds(t *testing.T) {
	min, max := 10*time.Millisecond, 80*time.Millisecond
	for attempt := 1; attempt <= 40; attempt++ {
		d := backoffWithJitter(min, max, attempt)
		assert.Greater(t, d, time.Duration(0))
		assert.LessOrEqual(t, d, max)
	}
	// attempt 1 is min minus up to half of it
	d := backoffWithJitter(min, max, 1)
	assert.GreaterOrEqual(t, d, min/2)
}

func TestEncode(t *testing.T) {
	b, err := encode([]byte("raw"))
	require.NoError(t, err)
	assert.Equal(t, "raw", string(b))

	b, err = encode(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(b))

	_, err = encode(func() {})
	require.Error(t, err)
}

func TestConstructorsRequireBrokers(t *testing.T) {
	_, err := NewProducer()
	require.Error(t, err)
	_, err = NewConsumer()
	require.Error(t, err)
}

func TestHookChainOrderAndPanic(t *testing.T) {
	var order []string
	mk := func(name string) ConsumerHook {
		return HookFuncs{
			Before: func(ctx context.Context, _ string, km kafka.Message, d []byte) (context.Context, kafka.Message, []byte, error) {
				order = append(order, "before:"+name)
				return ctx, km, append(d, name...), nil
			},
			After: func(context.Context, string, kafka.Message, []byte, error) {
				order = append(order, "after:"+name)
			},
		}
	}
	chain := NewHookChain(mk("a"), nil, mk("b"))
	ctx, km, data, err := chain.BeforeHandle(context.Background(), "t", kafka.Message{}, []byte(">"))
	require.NoError(t, err)
	chain.AfterHandle(ctx, "t", km, data, nil)
	assert.Equal(t, ">ab", string(data))
	assert.Equal(t, []string{"before:a", "before:b", "after:b", "after:a"}, order)

	boom := NewHookChain(HookFuncs{Before: func(context.Context, string, kafka.Message, []byte) (context.Context, kafka.Message, []byte, error) {
		panic("bad hook")
	}})
	_, _, _, err = boom.BeforeHandle(context.Background(), "t", kafka.Message{}, nil)
	require.Error(t, err)
	assert.NotPanics(t, func() {
		NewHookChain(HookFuncs{Err: func(context.Context, string, kafka.Message, []byte, error) { panic("x") }}).
			OnError(context.Background(), "t", kafka.Message{}, nil, errors.New("e"))
	})
}

func TestTraceHook(t *testing.T) {
	h := TraceHook()
	ctx, _, _, err := h.BeforeHandle(context.Background(), "t",
		kafka.Message{Headers: []kafka.Header{{Key: "trace_id", Value: []byte("abc")}}}, nil)
	require.NoError(t, err)
	assert.Equal(t, "abc", TraceID(ctx))

	ctx, _, _, err = h.BeforeHandle(context.Background(), "t", kafka.Message{}, nil)
	require.NoError(t, err)
	assert.Len(t, TraceID(ctx), 36)
}
