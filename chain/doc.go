// Package chain runs middleware steps one at a time against a shared
// running context, in the style of a serverless function handler.
//
// An executor is seeded with the event and context of one invocation and
// drives an ordered list of steps. Each step signals its completion
// through a continuation, by returning an error, or by panicking; the
// first signal wins. The first failure halts the chain and every failure
// is converted to the same {status, data} envelope shape the success
// path produces.
//
//	exec := chain.New(event, lambdaCtx,
//		chain.PublishTo(eventbus.New(nil)),
//		chain.LogWith(salh.GoLog(os.Stderr, "", 0)),
//	)
//	envelope, err := exec.Run(ctx,
//		chain.Named("authenticate", authenticate),
//		chain.Named("load-profile", loadProfile),
//		chain.Retry(
//			backoff.WithMaxRetries(backoff.NewConstantBackOff(time.Second), 4),
//			chain.Named("notify", notify),
//		),
//	)
//	if err != nil {
//		return chain.StepErr(err).Envelope()
//	}
//	return envelope
package chain
