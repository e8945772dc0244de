package handler

// APIV1Prefix is the base path of the public HTTP API.
const APIV1Prefix = "/api/v1"
