package constvars

const (
	URLParamIdentifier = "identifier"
)

const (
	URLQueryParamIdentifier  = "identifier"
	URLQueryParamType        = "type"
	URLQueryParamFosaID      = "fosaid"
	URLQueryParamSurname     = "surname"
	URLQueryParamPostNames   = "postNames"
	URLQueryParamYearOfBirth = "yearOfBirth"
	URLQueryParamOrigin      = "origin"
)
