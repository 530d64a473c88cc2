package status

type (
	Code   uint16
	Status string
)

// HTTP status codes as registered with IANA.
// See: https://www.iana.org/assignments/http-status-codes/http-status-codes.xhtml
const (
	OK             Code = 200
	Created        Code = 201
	NoContent      Code = 204
	PartialContent Code = 206

	BadRequest                   Code = 400
	Unauthorized                 Code = 401
	Forbidden                    Code = 403
	NotFound                     Code = 404
	RequestEntityTooLarge        Code = 413
	RequestedRangeNotSatisfiable Code = 416

	InternalServerError Code = 500
	BadGateway          Code = 502
	ServiceUnavailable  Code = 503
)

// Text returns a reason phrase for the status code. It returns the empty
// string if the code is unknown.
func Text(code Code) Status {
	switch code {
	case OK:
		return "OK"
	case Created:
		return "Created"
	case NoContent:
		return "No Content"
	case PartialContent:
		return "Partial Content"
	case BadRequest:
		return "Bad Request"
	case Unauthorized:
		return "Unauthorized"
	case Forbidden:
		return "Forbidden"
	case NotFound:
		return "Not Found"
	case InternalServerError:
		return "Internal Server Error"
	case BadGateway:
		return "Bad Gateway"
	case ServiceUnavailable:
		return "Service Unavailable"
	default:
		return ""
	}
}
