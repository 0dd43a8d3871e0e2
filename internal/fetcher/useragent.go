package fetcher

import "github.com/corpix/uarand"

type randomUserAgent struct{}

func (randomUserAgent) Generate() string {
	return uarand.GetRandom()
}

type fixedUserAgent string

func (u fixedUserAgent) Generate() string {
	return string(u)
}
