// Package config loads search declarations from CUE or YAML.
//
// A configuration declares the query layer, the models with their
// relations, and the search scopes:
//
//	layer: joins: true
//
//	model: post: {
//		table:       "posts"
//		primary_key: "id"
//		relation: {
//			author:   {kind: "belongs_to", model: "user"}              // foreign_key defaults to author_id
//			comments: {kind: "has_many", model: "comment", foreign_key: "post_id"}
//		}
//	}
//	model: user: {}
//	model: comment: {table: "comments"}
//
//	scope: search_posts: {
//		model:              "post"
//		against:            {title: "A", body: "B"}
//		associated_against: {comments: "body", author: ["name"]}
//		using:              {tsearch: {prefix: true}, trigram: {threshold: 0.3}}
//		ignoring:           "accents"
//		ranked_by:          ":tsearch * 2 + :trigram"
//	}
//
// YAML files use the same structure and go through the same CUE pipeline.
// Shape errors (wrong types, unknown options) stop loading with a LoadError
// carrying the CUE position; semantic problems are collected by Validate.
package config
