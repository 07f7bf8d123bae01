// Package web serves the calculator form page.
//
// GET / renders an empty form. POST / parses the submitted fields, runs the
// calculation and re-renders the form with either the text report or the
// first validation error. The split and rates fields are only shown when
// their checkbox is ticked.
package web
