package kafka

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewConsumerValidation(t *testing.T) {
	tests := []struct {
		name    string
		brokers []string
		topic   string
		group   string
	}{
		{name: "no brokers", topic: "t", group: "g"},
		{name: "no topic", brokers: []string{"b:9092"}, group: "g"},
		{name: "no group", brokers: []string{"b:9092"}, topic: "t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConsumer(tt.brokers, tt.topic, tt.group)
			require.Error(t, err)
		})
	}
}

func TestNewConsumer(t *testing.T) {
	c, err := NewConsumer([]string{"localhost:9092"}, "catalog-webhooks", "catalog-sync")
	require.NoError(t, err)
	require.NoError(t, c.Close())
}
