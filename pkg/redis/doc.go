// Package redis connects to Redis and ships log events into a Redis stream.
//
// Connect retries the initial ping according to Config, and Healthcheck
// returns a readiness check. StreamClient implements the relay client
// contract: each batch becomes one MULTI/EXEC transaction of XADD commands,
// optionally trimmed with MAXLEN ~.
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	sink, _ := redis.NewStreamClientFromConfig(client, cfg, redis.WithOwnedClient())
//	r, _ := relay.New[logevent.Event](sink)
//
// Stream entries carry the fields id, time, level, message, service and
// attrs (a JSON object). Replies such as LOADING or BUSY are reported as
// relay.ErrStaleSequence so the relay retries them quietly.
package redis
