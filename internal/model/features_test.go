package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewSchema(t *testing.T) {

	type test struct {
		names []string
		err   bool
	}

	tests := map[string]test{
		"single": {
			names: []string{"rsi"},
		},
		"several": {
			names: []string{"ret_1", "ret_5", "rsi", "volatility"},
		},
		"empty": {
			names: []string{},
			err:   true,
		},
		"duplicate": {
			names: []string{"rsi", "ret_1", "rsi"},
			err:   true,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			schema, err := NewSchema(tt.names...)
			if tt.err {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, len(tt.names), schema.Size())
			assert.Equal(t, tt.names, schema.Names())
			for i, n := range tt.names {
				j, ok := schema.Index(n)
				assert.True(t, ok)
				assert.Equal(t, i, j)
			}
		})
	}
}

func TestSchema_Vector(t *testing.T) {
	schema, err := NewSchema("ret_1", "rsi", "volatility")
	assert.NoError(t, err)

	v, err := schema.Vector(map[string]float64{
		"volatility": 0.3,
		"ret_1":      0.1,
		"rsi":        0.2,
	})
	assert.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, v)

	_, err = schema.Vector(map[string]float64{
		"ret_1": 0.1,
	})
	assert.Error(t, err)

	_, err = schema.Vector(map[string]float64{
		"ret_1":   0.1,
		"rsi":     0.2,
		"unknown": 0.3,
	})
	assert.Error(t, err)
}

func TestSignal(t *testing.T) {

	type test struct {
		signal Signal
		str    string
		sign   float64
		inv    Signal
	}

	tests := map[string]test{
		"buy": {
			signal: Buy,
			str:    "buy",
			sign:   1.0,
			inv:    Sell,
		},
		"sell": {
			signal: Sell,
			str:    "sell",
			sign:   -1.0,
			inv:    Buy,
		},
		"hold": {
			signal: Hold,
			str:    "hold",
			sign:   0.0,
			inv:    Hold,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tt.str, tt.signal.String())
			assert.Equal(t, tt.sign, tt.signal.Sign())
			assert.Equal(t, tt.inv, tt.signal.Inv())
		})
	}
}
