package common

const (
	RedisStreamScoreRequest = "portfolio.score.request"

	RedisStreamGroup    = "analyzer-group"
	RedisStreamConsumer = "analyzer-consumer"
)
