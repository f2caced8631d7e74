// Warmup handling. CloudWatch Events invoke the function periodically with a
// {"source":"warmup"} payload to keep instances resident; an optional
// concurrency count fans out async self-invocations so several instances
// stay warm at once.
package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	lambdasdk "github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
	"golang.org/x/sync/errgroup"
)

const (
	warmupSource = "warmup"

	// warmupHold keeps this instance busy briefly so fanned-out invocations
	// land on other instances instead of reusing this one.
	warmupHold = 75 * time.Millisecond
)

type warmupEvent struct {
	Source      string `json:"source"`
	Concurrency int    `json:"concurrency"`
}

type warmupResponse struct {
	Status          string `json:"status"`
	InstancesWarmed int    `json:"instancesWarmed"`
}

// isWarmupEvent reports whether the raw event is a warmup ping.
func isWarmupEvent(event json.RawMessage) (*warmupEvent, bool) {
	var warmup warmupEvent
	if err := json.Unmarshal(event, &warmup); err != nil {
		return nil, false
	}
	if warmup.Source != warmupSource {
		return nil, false
	}
	return &warmup, true
}

// warmer answers warmup pings, optionally self-invoking to hold extra
// instances warm.
type warmer struct {
	client       *lambdasdk.Client
	functionName string
}

func newWarmer(client *lambdasdk.Client, functionName string) *warmer {
	return &warmer{client: client, functionName: functionName}
}

func (w *warmer) handle(ctx context.Context, warmup *warmupEvent) (interface{}, error) {
	warmed := 1 // this instance

	if warmup.Concurrency > 0 && w.functionName != "" {
		if err := w.fanOut(ctx, warmup.Concurrency); err != nil {
			slog.Warn("warmup fan-out failed", "error", err)
		} else {
			warmed += warmup.Concurrency
		}
	}

	time.Sleep(warmupHold)

	return map[string]interface{}{
		"statusCode": 200,
		"body": warmupResponse{
			Status:          "warm",
			InstancesWarmed: warmed,
		},
	}, nil
}

// fanOut asynchronously invokes this function count more times. Child
// invocations carry concurrency 0 so they cannot recurse.
func (w *warmer) fanOut(ctx context.Context, count int) error {
	payload, err := json.Marshal(warmupEvent{Source: warmupSource, Concurrency: 0})
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		g.Go(func() error {
			_, err := w.client.Invoke(ctx, &lambdasdk.InvokeInput{
				FunctionName:   aws.String(w.functionName),
				InvocationType: types.InvocationTypeEvent,
				Payload:        payload,
			})
			return err
		})
	}
	return g.Wait()
}
