// Package routepath compiles route patterns and validates navigation paths.
//
// A pattern is a "/"-separated template whose ":name" segments capture one
// path segment each:
//
//	p := routepath.MustCompile("/posts/:postId/comments/:commentId")
//	params, ok, err := p.Match("/posts/7/comments/3")
//	// params == Params{"postId": "7", "commentId": "3"}, ok == true
//
// Placeholder names must be unique within a pattern; Compile rejects
// duplicates with ErrDuplicateParam.
//
// SanitizeNavPath cleans navigation targets received from clients before
// they reach a router.
package routepath
