// Package models contains the gorm persistence models. Models stay out of
// the domain packages; stores convert between the two.
package models
