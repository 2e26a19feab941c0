// Package core holds the survey application's business logic and its error
// taxonomy, independent of HTTP and rendering.
//
// # Service
//
// [Service] is the single entry point for handlers: accounts ([Service.Register],
// [Service.Authenticate]), surveys ([Service.CreateSurvey], [Service.ListSurveys],
// [Service.GetSurvey]), responses ([Service.SubmitResponse], [Service.Results])
// and the admin dashboard ([Service.AdminStats]). All persistence goes through
// a *database.Store.
//
// # Errors
//
// Every error a Service method returns is an [*AppError]. Its [Kind] fixes the
// HTTP status:
//
//	Validation     422  carries per-field messages (FieldErrors)
//	Unauthorized   401
//	Forbidden      403
//	NotFound       404
//	Conflict       409
//	Database       500  generic user message unless one is given
//	BusinessLogic  400
//
// The internal message is for logs; only UserMessage may be rendered. Raw
// store failures are classified by [WrapDB] before they leave the package.
package core
