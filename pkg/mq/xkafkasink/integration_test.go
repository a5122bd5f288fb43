//go:build integration

package xkafkasink_test

import (
	"context"
	"testing"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	kafkaContainer "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/omeyang/xcommit/pkg/mq/xkafka"
	"github.com/omeyang/xcommit/pkg/mq/xkafkasink"
)

func setupKafka(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := kafkaContainer.Run(ctx,
		"confluentinc/cp-kafka:7.5.0",
		kafkaContainer.WithClusterID("test-cluster"),
	)
	require.NoError(t, err, "failed to start kafka container")
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func readCommitted(t *testing.T, brokers, topic string, want int) []string {
	t.Helper()

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers),
		kgo.ConsumeTopics(topic),
		kgo.FetchIsolationLevel(kgo.ReadCommitted()),
		kgo.ConsumeResetOffset(kgo.NewOffset().AtStart()),
		kgo.AllowAutoTopicCreation(),
	)
	require.NoError(t, err)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var values []string
	for len(values) < want {
		fetches := client.PollFetches(ctx)
		if ctx.Err() != nil {
			break
		}
		fetches.EachRecord(func(r *kgo.Record) {
			values = append(values, string(r.Value))
		})
	}
	return values
}

func TestIntegration_Committer_LiveAndRecovered(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	brokers := setupKafka(t)
	topic := "sink-topic"

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	cfg := xkafkasink.ProducerConfig{xkafka.KeyBootstrapServers: brokers}

	// 活句柄：从池中借出，写入后预提交
	pool, err := xkafka.NewTxnProducerPool(ctx, cfg, "it-sink", nil)
	require.NoError(t, err)
	defer pool.Close()

	handle, err := pool.Get()
	require.NoError(t, err)
	producer := handle.Object()
	require.NoError(t, producer.BeginTransaction())
	require.NoError(t, producer.Produce(ctx, &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &topic, Partition: kafka.PartitionAny},
		Value:          []byte("live"),
	}))
	require.NoError(t, producer.Flush(ctx))

	live, err := xkafkasink.NewCommittableWithProducer(producer.TransactionalID(), 0, 0, handle)
	require.NoError(t, err)

	// 恢复：另一个 writer 预提交后只留下 (transactional.id, producerId, epoch)
	writer, err := kgo.NewClient(
		kgo.SeedBrokers(brokers),
		kgo.TransactionalID("it-sink-recovered"),
		kgo.DefaultProduceTopic(topic),
	)
	require.NoError(t, err)
	defer writer.Close()

	require.NoError(t, writer.BeginTransaction())
	require.NoError(t, writer.ProduceSync(ctx, kgo.StringRecord("recovered")).FirstErr())
	require.NoError(t, writer.Flush(ctx))
	producerID, epoch, err := writer.ProducerID(ctx)
	require.NoError(t, err)

	recovered, err := xkafkasink.NewCommittable("it-sink-recovered", producerID, epoch)
	require.NoError(t, err)

	committer, err := xkafkasink.NewCommitter(cfg)
	require.NoError(t, err)
	defer committer.Close()

	res, err := committer.CommitResult(ctx, []*xkafkasink.Committable{live, recovered})
	require.NoError(t, err)
	assert.Len(t, res.Committed, 2)
	assert.Empty(t, res.Retry)
	assert.Equal(t, 1, pool.Idle(), "live handle returned to the pool")

	assert.ElementsMatch(t, []string{"live", "recovered"}, readCommitted(t, brokers, topic, 2))
}
