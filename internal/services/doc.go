// Package services contains the business-logic facades the transport
// layer calls into: the read path over the visibility engine and
// aggregation layer, the order workflow, and the license issuer.
// Services own observability (logging, tracing, metrics); the packages
// underneath stay pure.
package services
