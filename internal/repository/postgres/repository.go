package postgres

import "github.com/utafrali/neighborly/internal/repository"

var (
	_ repository.AddressRepository  = (*AddressRepository)(nil)
	_ repository.ReviewRepository   = (*ReviewRepository)(nil)
	_ repository.QuestionRepository = (*QuestionRepository)(nil)
	_ repository.AnswerRepository   = (*AnswerRepository)(nil)
)
